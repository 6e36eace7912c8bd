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

// EarnedHandler exposes the earned-request ledger: submission plus the
// approve/deny/revert/edit/delete transitions.
type EarnedHandler struct {
	submissions *service.SubmissionService
	approvals   *service.ApprovalService
	directory   *service.DirectoryService
}

// NewEarnedHandler constructs the handler.
func NewEarnedHandler(submissions *service.SubmissionService, approvals *service.ApprovalService, directory *service.DirectoryService) *EarnedHandler {
	return &EarnedHandler{submissions: submissions, approvals: approvals, directory: directory}
}

// Submit godoc
// @Summary Submit an earned request
// @Tags Earned
// @Accept json
// @Produce json
// @Param payload body models.SubmitEarnedRequest true "Submission payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /earned [post]
func (h *EarnedHandler) Submit(c *gin.Context) {
	var req models.SubmitEarnedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if claims := claimsFromContext(c); claims != nil && strings.TrimSpace(req.Email) == "" {
		req.Email = claims.Email
	}

	created, err := h.submissions.RecordEarned(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// List godoc
// @Summary List earned requests
// @Tags Earned
// @Produce json
// @Param building query string false "Building code"
// @Param email query string false "Requester email"
// @Param status query string false "PENDING, APPROVED or DENIED"
// @Success 200 {object} response.Envelope
// @Router /earned [get]
func (h *EarnedHandler) List(c *gin.Context) {
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

	rows, err := h.approvals.ListEarned(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Get godoc
// @Summary Get one earned request
// @Tags Earned
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /earned/{id} [get]
func (h *EarnedHandler) Get(c *gin.Context) {
	row, err := h.approvals.GetEarned(c.Request.Context(), c.Param("id"))
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
// @Summary Approve an earned request
// @Tags Earned
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /earned/{id}/approve [post]
func (h *EarnedHandler) Approve(c *gin.Context) {
	row, err := h.approvals.ApproveEarned(c.Request.Context(), c.Param("id"), true)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, row, nil)
}

// Deny godoc
// @Summary Deny an earned request
// @Tags Earned
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body object true "Reasons and note"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /earned/{id}/deny [post]
func (h *EarnedHandler) Deny(c *gin.Context) {
	var payload struct {
		Reasons []string `json:"reasons"`
		Note    string   `json:"note"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	row, err := h.approvals.DenyEarned(c.Request.Context(), c.Param("id"), payload.Reasons, payload.Note, true)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, row, nil)
}

// Revert godoc
// @Summary Revert an earned request to pending
// @Tags Earned
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /earned/{id}/revert [post]
func (h *EarnedHandler) Revert(c *gin.Context) {
	row, err := h.approvals.RevertEarned(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, row, nil)
}

// Edit godoc
// @Summary Edit an earned request and its archive mirror
// @Tags Earned
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body models.EarnedRequestEdit true "Edit payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /earned/{id} [put]
func (h *EarnedHandler) Edit(c *gin.Context) {
	var req models.EarnedRequestEdit
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	row, err := h.approvals.EditEarned(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, row, nil)
}

// Delete godoc
// @Summary Delete an earned request and its archive mirror
// @Tags Earned
// @Produce json
// @Param id path string true "Request ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /earned/{id} [delete]
func (h *EarnedHandler) Delete(c *gin.Context) {
	if err := h.approvals.DeleteEarned(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
