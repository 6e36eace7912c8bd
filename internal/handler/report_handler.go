package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orono-schools/tst-bank-api/internal/service"
	"github.com/orono-schools/tst-bank-api/pkg/response"
)

// ReportHandler exposes merged history, file exports, and status emails.
type ReportHandler struct {
	reports   *service.ReportService
	directory *service.DirectoryService
}

// NewReportHandler constructs the handler.
func NewReportHandler(reports *service.ReportService, directory *service.DirectoryService) *ReportHandler {
	return &ReportHandler{reports: reports, directory: directory}
}

// History godoc
// @Summary Merged earned and used history for one member
// @Tags Reports
// @Produce json
// @Param email path string true "Staff email"
// @Success 200 {object} response.Envelope
// @Router /reports/history/{email} [get]
func (h *ReportHandler) History(c *gin.Context) {
	entries, err := h.reports.History(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// ExportBalances godoc
// @Summary Export the building balance sheet
// @Tags Reports
// @Produce octet-stream
// @Param building query string false "Building code"
// @Param format query string false "csv or pdf"
// @Success 200 {file} binary
// @Router /reports/balances/export [get]
func (h *ReportHandler) ExportBalances(c *gin.Context) {
	claims := claimsFromContext(c)
	scope, err := h.directory.ResolveScope(claims, c.Query("building"))
	if err != nil {
		response.Error(c, err)
		return
	}

	data, filename, err := h.reports.ExportBalances(c.Request.Context(), scope, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveAttachment(c, data, filename)
}

// ExportHistory godoc
// @Summary Export one member's merged history
// @Tags Reports
// @Produce octet-stream
// @Param email path string true "Staff email"
// @Param format query string false "csv or pdf"
// @Success 200 {file} binary
// @Router /reports/history/{email}/export [get]
func (h *ReportHandler) ExportHistory(c *gin.Context) {
	data, filename, err := h.reports.ExportHistory(c.Request.Context(), c.Param("email"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveAttachment(c, data, filename)
}

// SendStatusEmail godoc
// @Summary Email one member their balance summary
// @Tags Reports
// @Produce json
// @Param email path string true "Staff email"
// @Param building query string false "Building code"
// @Success 204 {object} response.Envelope
// @Router /reports/status/{email} [post]
func (h *ReportHandler) SendStatusEmail(c *gin.Context) {
	claims := claimsFromContext(c)
	scope, err := h.directory.ResolveScope(claims, c.Query("building"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.reports.SendStatusEmail(c.Request.Context(), c.Param("email"), scope); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SendStatusEmails godoc
// @Summary Email every member in a building their balance summary
// @Tags Reports
// @Produce json
// @Param building query string false "Building code"
// @Success 200 {object} response.Envelope
// @Router /reports/status [post]
func (h *ReportHandler) SendStatusEmails(c *gin.Context) {
	claims := claimsFromContext(c)
	scope, err := h.directory.ResolveScope(claims, c.Query("building"))
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.reports.SendStatusEmails(c.Request.Context(), scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func serveAttachment(c *gin.Context, data []byte, filename string) {
	contentType := "text/csv"
	if len(filename) > 4 && filename[len(filename)-4:] == ".pdf" {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}
