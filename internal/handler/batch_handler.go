package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orono-schools/tst-bank-api/internal/models"
	"github.com/orono-schools/tst-bank-api/internal/service"
	appErrors "github.com/orono-schools/tst-bank-api/pkg/errors"
	"github.com/orono-schools/tst-bank-api/pkg/response"
)

// BatchHandler exposes bulk ledger transitions.
type BatchHandler struct {
	batch *service.BatchService
}

// NewBatchHandler constructs the handler.
func NewBatchHandler(batch *service.BatchService) *BatchHandler {
	return &BatchHandler{batch: batch}
}

func (h *BatchHandler) run(c *gin.Context, op func(models.BatchRequest) (models.BatchResult, error)) {
	var req models.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := op(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ApproveEarned godoc
// @Summary Approve earned requests in bulk
// @Tags Batch
// @Accept json
// @Produce json
// @Param payload body models.BatchRequest true "Request IDs"
// @Success 200 {object} response.Envelope
// @Router /batch/earned/approve [post]
func (h *BatchHandler) ApproveEarned(c *gin.Context) {
	h.run(c, func(req models.BatchRequest) (models.BatchResult, error) {
		return h.batch.ApproveEarned(c.Request.Context(), req)
	})
}

// DenyEarned godoc
// @Summary Deny earned requests in bulk
// @Tags Batch
// @Accept json
// @Produce json
// @Param payload body models.BatchRequest true "Request IDs with a shared reason"
// @Success 200 {object} response.Envelope
// @Router /batch/earned/deny [post]
func (h *BatchHandler) DenyEarned(c *gin.Context) {
	h.run(c, func(req models.BatchRequest) (models.BatchResult, error) {
		return h.batch.DenyEarned(c.Request.Context(), req)
	})
}

// DeleteEarned godoc
// @Summary Delete earned requests in bulk
// @Tags Batch
// @Accept json
// @Produce json
// @Param payload body models.BatchRequest true "Request IDs"
// @Success 200 {object} response.Envelope
// @Router /batch/earned/delete [post]
func (h *BatchHandler) DeleteEarned(c *gin.Context) {
	h.run(c, func(req models.BatchRequest) (models.BatchResult, error) {
		return h.batch.DeleteEarned(c.Request.Context(), req)
	})
}

// ApproveUsed godoc
// @Summary Approve usage requests in bulk
// @Tags Batch
// @Accept json
// @Produce json
// @Param payload body models.BatchRequest true "Request IDs"
// @Success 200 {object} response.Envelope
// @Router /batch/used/approve [post]
func (h *BatchHandler) ApproveUsed(c *gin.Context) {
	h.run(c, func(req models.BatchRequest) (models.BatchResult, error) {
		return h.batch.ApproveUsed(c.Request.Context(), req)
	})
}

// DeleteUsed godoc
// @Summary Delete usage requests in bulk
// @Tags Batch
// @Accept json
// @Produce json
// @Param payload body models.BatchRequest true "Request IDs"
// @Success 200 {object} response.Envelope
// @Router /batch/used/delete [post]
func (h *BatchHandler) DeleteUsed(c *gin.Context) {
	h.run(c, func(req models.BatchRequest) (models.BatchResult, error) {
		return h.batch.DeleteUsed(c.Request.Context(), req)
	})
}
