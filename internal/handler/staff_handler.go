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

// StaffHandler exposes the staff directory and balance views.
type StaffHandler struct {
	directory *service.DirectoryService
	balances  *service.BalanceService
}

// NewStaffHandler constructs the handler.
func NewStaffHandler(directory *service.DirectoryService, balances *service.BalanceService) *StaffHandler {
	return &StaffHandler{directory: directory, balances: balances}
}

// List godoc
// @Summary List staff directory
// @Tags Staff
// @Produce json
// @Param building query string false "Building code"
// @Param role query string false "Role filter"
// @Param search query string false "Name or email search"
// @Success 200 {object} response.Envelope
// @Router /staff [get]
func (h *StaffHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)

	filter := models.StaffFilter{Search: strings.TrimSpace(c.Query("search"))}
	if raw := strings.TrimSpace(c.Query("role")); raw != "" {
		role := models.StaffRole(strings.ToUpper(raw))
		filter.Role = &role
	}
	if raw := strings.TrimSpace(c.Query("active")); raw != "" {
		active := raw == "true"
		filter.Active = &active
	}

	members, err := h.directory.ListStaff(c.Request.Context(), claims, c.Query("building"), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, members, nil)
}

// Get godoc
// @Summary Get one staff member
// @Tags Staff
// @Produce json
// @Param email path string true "Staff email"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /staff/{email} [get]
func (h *StaffHandler) Get(c *gin.Context) {
	member, err := h.directory.GetMember(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// Balances godoc
// @Summary Building balance sheet
// @Tags Staff
// @Produce json
// @Param building query string false "Building code"
// @Success 200 {object} response.Envelope
// @Router /staff/balances [get]
func (h *StaffHandler) Balances(c *gin.Context) {
	claims := claimsFromContext(c)
	scope, err := h.directory.ResolveScope(claims, c.Query("building"))
	if err != nil {
		response.Error(c, err)
		return
	}

	balances, err := h.balances.ComputeBalances(c.Request.Context(), scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, balances, nil)
}

// Balance godoc
// @Summary One member's balance
// @Tags Staff
// @Produce json
// @Param email path string true "Staff email"
// @Param building query string false "Building code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /staff/{email}/balance [get]
func (h *StaffHandler) Balance(c *gin.Context) {
	claims := claimsFromContext(c)
	scope, err := h.directory.ResolveScope(claims, c.Query("building"))
	if err != nil {
		response.Error(c, err)
		return
	}

	balance, err := h.balances.MemberBalance(c.Request.Context(), c.Param("email"), scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, balance, nil)
}

// UpdateCarryOver godoc
// @Summary Set a member's carry-over hours
// @Tags Staff
// @Accept json
// @Produce json
// @Param payload body models.CarryOverUpdate true "Carry-over payload"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /staff/carry-over [put]
func (h *StaffHandler) UpdateCarryOver(c *gin.Context) {
	var req models.CarryOverUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	if err := h.directory.UpdateCarryOver(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
