package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orono-schools/tst-bank-api/internal/models"
	"github.com/orono-schools/tst-bank-api/internal/service"
	appErrors "github.com/orono-schools/tst-bank-api/pkg/errors"
	"github.com/orono-schools/tst-bank-api/pkg/response"
)

// UsedHandler exposes the used-request side of the ledger.
type UsedHandler struct {
	submissions *service.SubmissionService
	approvals   *service.ApprovalService
	directory   *service.DirectoryService
}

// NewUsedHandler constructs the handler.
func NewUsedHandler(submissions *service.SubmissionService, approvals *service.ApprovalService, directory *service.DirectoryService) *UsedHandler {
	return &UsedHandler{submissions: submissions, approvals: approvals, directory: directory}
}

// Submit godoc
// @Summary Submit a usage request
// @Tags Used
// @Accept json
// @Produce json
// @Param payload body models.SubmitUsageRequest true "Submission payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /used [post]
func (h *UsedHandler) Submit(c *gin.Context) {
	var req models.SubmitUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if claims := claimsFromContext(c); claims != nil && strings.TrimSpace(req.Email) == "" {
		req.Email = claims.Email
	}

	created, err := h.submissions.RecordUsage(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// List godoc
// @Summary List usage requests
// @Tags Used
// @Produce json
// @Param building query string false "Building code"
// @Param email query string false "Requester email"
// @Param status query string false "PENDING or APPROVED"
// @Success 200 {object} response.Envelope
// @Router /used [get]
func (h *UsedHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	scope, err := h.directory.ResolveScope(claims, c.Query("building"))
	if err != nil {
		response.Error(c, err)
		return
	}

	filter := models.RequestFilter{Building: scope, Email: strings.TrimSpace(c.Query("email"))}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := models.RequestStatus(strings.ToUpper(raw))
		filter.Status = &status
	}

	rows, err := h.approvals.ListUsed(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Get godoc
// @Summary Get one usage request
// @Tags Used
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /used/{id} [get]
func (h *UsedHandler) Get(c *gin.Context) {
	row, err := h.approvals.GetUsed(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !canViewRequest(c, row.Email) {
		response.Error(c, appErrors.ErrForbidden)
		return
	}
	response.JSON(c, http.StatusOK, row, nil)
}

// Approve godoc
// @Summary Approve a usage request
// @Tags Used
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /used/{id}/approve [post]
func (h *UsedHandler) Approve(c *gin.Context) {
	row, err := h.approvals.ApproveUsed(c.Request.Context(), c.Param("id"), true)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, row, nil)
}

// Revert godoc
// @Summary Revert a usage request to pending
// @Tags Used
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /used/{id}/revert [post]
func (h *UsedHandler) Revert(c *gin.Context) {
	row, err := h.approvals.RevertUsed(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, row, nil)
}

// Delete godoc
// @Summary Delete a usage request
// @Tags Used
// @Produce json
// @Param id path string true "Request ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /used/{id} [delete]
func (h *UsedHandler) Delete(c *gin.Context) {
	if err := h.approvals.DeleteUsed(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
