package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orono-schools/tst-bank-api/internal/models"
	"github.com/orono-schools/tst-bank-api/internal/service"
	appErrors "github.com/orono-schools/tst-bank-api/pkg/errors"
	"github.com/orono-schools/tst-bank-api/pkg/response"
)

// ScheduleHandler exposes the availability schedule grid.
type ScheduleHandler struct {
	schedule  *service.ScheduleService
	directory *service.DirectoryService
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(schedule *service.ScheduleService, directory *service.DirectoryService) *ScheduleHandler {
	return &ScheduleHandler{schedule: schedule, directory: directory}
}

// Months godoc
// @Summary School-year month sequence
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule/months [get]
func (h *ScheduleHandler) Months(c *gin.Context) {
	response.JSON(c, http.StatusOK, service.MonthOrder(), nil)
}

// ReadCell godoc
// @Summary Read one month/period availability cell
// @Tags Schedule
// @Produce json
// @Param month query string true "School-year month"
// @Param period query string true "Period label"
// @Param building query string false "Building code"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) ReadCell(c *gin.Context) {
	claims := claimsFromContext(c)
	scope, err := h.directory.ResolveScope(claims, c.Query("building"))
	if err != nil {
		response.Error(c, err)
		return
	}

	rows, err := h.schedule.ReadCell(c.Request.Context(), c.Query("month"), c.Query("period"), scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// WriteCell godoc
// @Summary Rebuild one month/period availability cell
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body models.ScheduleUpdate true "Day-to-teachers grid"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedule [put]
func (h *ScheduleHandler) WriteCell(c *gin.Context) {
	var req models.ScheduleUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	claims := claimsFromContext(c)
	scope, err := h.directory.ResolveScope(claims, req.Building)
	if err != nil {
		response.Error(c, err)
		return
	}
	req.Building = scope

	if err := h.schedule.WriteCell(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
