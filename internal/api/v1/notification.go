package v1

import (
	"net/http"

	"github.com/feesync/feesync/internal/api/dto"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/service"
	"github.com/feesync/feesync/internal/types"
	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	service service.NotificationService
}

func NewNotificationHandler(service service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// @Summary List notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param filter query types.NotificationFilter false "Filter"
// @Success 200 {object} dto.ListNotificationsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	var filter types.NotificationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.List(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Mark a notification read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.service.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse("Notification marked as read"))
}

// @Summary Mark every notification read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.MarkAllReadResponse
// @Router /notifications/read-all [patch]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	resp, err := h.service.MarkAllRead(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
