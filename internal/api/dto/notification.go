package dto

import (
	"github.com/feesync/feesync/internal/domain/notification"
	"github.com/feesync/feesync/internal/types"
)

type NotificationResponse struct {
	*notification.Notification
}

type ListNotificationsResponse struct {
	types.ListResponse[*NotificationResponse]
	Unread int `json:"unread"`
}

type MarkAllReadResponse struct {
	Updated int `json:"updated"`
}
