package v1

import (
	"context"
	"net/http"
	"strings"

	"github.com/feesync/feesync/internal/api/dto"
	"github.com/feesync/feesync/internal/config"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/logger"
	"github.com/feesync/feesync/internal/service"
	"github.com/feesync/feesync/internal/types"
	"github.com/gin-gonic/gin"
)

type ZohoHandler struct {
	service service.ZohoService
	sync    service.SyncService
	cfg     *config.Configuration
	logger  *logger.Logger
}

func NewZohoHandler(svc service.ZohoService, sync service.SyncService, cfg *config.Configuration, logger *logger.Logger) *ZohoHandler {
	return &ZohoHandler{
		service: svc,
		sync:    sync,
		cfg:     cfg,
		logger:  logger,
	}
}

// @Summary Zoho consent URL
// @Tags Zoho
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.AuthURLResponse
// @Router /zoho/auth-url [get]
func (h *ZohoHandler) AuthURL(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.AuthURL(c.Request.Context()))
}

// @Summary Zoho OAuth callback
// @Description Exchanges the authorization code. Redirects to the dashboard when a frontend URL is configured.
// @Tags Zoho
// @Produce json
// @Param code query string true "Authorization code"
// @Success 200 {object} dto.TokenStatusResponse
// @Success 302
// @Failure 400 {object} ierr.ErrorResponse
// @Router /zoho/callback [get]
func (h *ZohoHandler) Callback(c *gin.Context) {
	if providerErr := c.Query("error"); providerErr != "" {
		c.Error(ierr.NewErrorf("zoho authorization denied: %s", providerErr).
			WithHint("Zoho authorization was not granted").
			Mark(ierr.ErrValidation))
		return
	}

	// the exchange must finish even if the browser navigates away
	ctx := context.WithoutCancel(c.Request.Context())
	status, err := h.service.HandleCallback(ctx, c.Query("code"))
	if err != nil {
		c.Error(err)
		return
	}

	if h.cfg.Auth.FrontendURL != "" {
		c.Redirect(http.StatusFound, strings.TrimRight(h.cfg.Auth.FrontendURL, "/")+"/settings?zoho=connected")
		return
	}
	c.JSON(http.StatusOK, status)
}

// @Summary Refresh the Zoho token
// @Tags Zoho
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.TokenStatusResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /zoho/refresh-token [post]
func (h *ZohoHandler) RefreshToken(c *gin.Context) {
	status, err := h.service.RefreshToken(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// @Summary Zoho token status
// @Tags Zoho
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.TokenStatusResponse
// @Router /token/status [get]
func (h *ZohoHandler) TokenStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.TokenStatus(c.Request.Context()))
}

// @Summary List Zoho customers
// @Description Lists customers straight from Zoho without touching the mirror
// @Tags Zoho
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ZohoListResponse[zoho.Contact]
// @Failure 403 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /zoho/customers [get]
func (h *ZohoHandler) ListCustomers(c *gin.Context) {
	resp, err := h.service.ListCustomers(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List Zoho invoices
// @Tags Zoho
// @Produce json
// @Security BearerAuth
// @Param customer_id query string true "Zoho customer id"
// @Success 200 {object} dto.ZohoListResponse[zoho.Invoice]
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /zoho/invoices [get]
func (h *ZohoHandler) ListInvoices(c *gin.Context) {
	var req dto.ZohoInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListInvoices(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List Zoho payments
// @Tags Zoho
// @Produce json
// @Security BearerAuth
// @Param date_start query string false "First day, YYYY-MM-DD"
// @Param date_end query string false "Last day, YYYY-MM-DD"
// @Success 200 {object} dto.ZohoListResponse[zoho.CustomerPayment]
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /zoho/payments [get]
func (h *ZohoHandler) ListPayments(c *gin.Context) {
	var req dto.ZohoPaymentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListPayments(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Sync Zoho into MongoDB
// @Description Mirrors customers, invoices and the trailing payment window. Only one sync runs at a time.
// @Tags Sync
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SyncResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /sync-zoho-to-mongo [post]
func (h *ZohoHandler) Sync(c *gin.Context) {
	// a client disconnect must not leave the mirror half written
	ctx := context.WithoutCancel(c.Request.Context())

	resp, err := h.service.SyncNow(ctx)
	if err != nil {
		h.logger.Errorw("manual sync failed", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List sync runs
// @Tags Sync
// @Produce json
// @Security BearerAuth
// @Param filter query types.SyncLogFilter false "Filter"
// @Success 200 {object} dto.ListSyncLogsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /sync/logs [get]
func (h *ZohoHandler) ListSyncLogs(c *gin.Context) {
	var filter types.SyncLogFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.sync.ListLogs(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
