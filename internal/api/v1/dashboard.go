package v1

import (
	"net/http"

	"github.com/feesync/feesync/internal/api/dto"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/service"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	service service.AggregationService
}

func NewDashboardHandler(service service.AggregationService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// @Summary Dashboard KPIs
// @Description Totals, this month's collection and outstanding balances
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.DashboardKPIsResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /dashboard/kpis [get]
func (h *DashboardHandler) GetKPIs(c *gin.Context) {
	resp, err := h.service.GetDashboardKPIs(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Outstanding balance
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param customer_id path string true "Contact ID"
// @Success 200 {object} dto.OutstandingResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /dashboard/outstanding/{customer_id} [get]
func (h *DashboardHandler) GetOutstanding(c *gin.Context) {
	resp, err := h.service.GetOutstanding(c.Request.Context(), c.Param("customer_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Paid in a month
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param customer_id query string true "Contact ID"
// @Param month query string false "YYYY-MM, defaults to the current month"
// @Success 200 {object} dto.MonthlyPaidResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /dashboard/monthly-paid [get]
func (h *DashboardHandler) GetMonthlyPaid(c *gin.Context) {
	var req dto.MonthlyPaidRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetMonthlyPaid(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
