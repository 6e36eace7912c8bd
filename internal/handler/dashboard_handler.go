package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orono-schools/tst-bank-api/internal/service"
	"github.com/orono-schools/tst-bank-api/pkg/response"
)

// DashboardHandler exposes the admin landing counts.
type DashboardHandler struct {
	dashboard *service.DashboardService
	directory *service.DirectoryService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(dashboard *service.DashboardService, directory *service.DirectoryService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, directory: directory}
}

// Counts godoc
// @Summary Pending request counts
// @Tags Dashboard
// @Produce json
// @Param building query string false "Building code"
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Counts(c *gin.Context) {
	claims := claimsFromContext(c)
	scope, err := h.directory.ResolveScope(claims, c.Query("building"))
	if err != nil {
		response.Error(c, err)
		return
	}

	counts, err := h.dashboard.Counts(c.Request.Context(), scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, counts, nil)
}
