package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orono-schools/tst-bank-api/internal/models"
	"github.com/orono-schools/tst-bank-api/internal/service"
	appErrors "github.com/orono-schools/tst-bank-api/pkg/errors"
	"github.com/orono-schools/tst-bank-api/pkg/response"
)

// CoverageHandler lets admins request coverage and resolves the signed
// accept/decline links teachers click from email.
type CoverageHandler struct {
	coverage *service.CoverageService
}

// NewCoverageHandler constructs the handler.
func NewCoverageHandler(coverage *service.CoverageService) *CoverageHandler {
	return &CoverageHandler{coverage: coverage}
}

// Create godoc
// @Summary Ask a teacher to cover a slot
// @Tags Coverage
// @Accept json
// @Produce json
// @Param payload body models.CoverageRequestInput true "Coverage request"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /coverage [post]
func (h *CoverageHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CoverageRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	cov, err := h.coverage.Request(c.Request.Context(), req, claims.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cov)
}

// Respond godoc
// @Summary Resolve a signed accept/decline link
// @Tags Coverage
// @Produce json
// @Param token query string true "Signed action token"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /coverage/respond [get]
func (h *CoverageHandler) Respond(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	cov, err := h.coverage.HandleAction(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cov, nil)
}
