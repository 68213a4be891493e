package service

import (
	"context"
	"time"

	"github.com/feesync/feesync/internal/api/dto"
	"github.com/feesync/feesync/internal/domain/notification"
	"github.com/feesync/feesync/internal/types"
	"github.com/samber/lo"
)

// NotificationService manages the admin activity log
type NotificationService interface {
	Create(ctx context.Context, notificationType types.NotificationType, message string, metadata map[string]string) (*notification.Notification, error)
	List(ctx context.Context, filter *types.NotificationFilter) (*dto.ListNotificationsResponse, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) (*dto.MarkAllReadResponse, error)
}

type notificationService struct {
	ServiceParams
}

func NewNotificationService(params ServiceParams) NotificationService {
	return &notificationService{ServiceParams: params}
}

func (s *notificationService) Create(ctx context.Context, notificationType types.NotificationType, message string, metadata map[string]string) (*notification.Notification, error) {
	n := &notification.Notification{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_NOTIFICATION),
		Type:      notificationType,
		Message:   message,
		Actor:     types.GetActor(ctx),
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.NotificationRepo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *notificationService) List(ctx context.Context, filter *types.NotificationFilter) (*dto.ListNotificationsResponse, error) {
	if filter == nil {
		filter = types.NewNotificationFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	filter.QueryFilter.WithDefaults()

	items, err := s.NotificationRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.NotificationRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	unread, err := s.NotificationRepo.Count(ctx, &types.NotificationFilter{
		QueryFilter: types.NewNoLimitQueryFilter(),
		UnreadOnly:  true,
	})
	if err != nil {
		return nil, err
	}

	responses := lo.Map(items, func(n *notification.Notification, _ int) *dto.NotificationResponse {
		return &dto.NotificationResponse{Notification: n}
	})
	return &dto.ListNotificationsResponse{
		ListResponse: types.NewListResponse(responses, total, filter.GetPage(), filter.GetLimit()),
		Unread:       unread,
	}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id string) error {
	return s.NotificationRepo.MarkRead(ctx, id)
}

func (s *notificationService) MarkAllRead(ctx context.Context) (*dto.MarkAllReadResponse, error) {
	updated, err := s.NotificationRepo.MarkAllRead(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.MarkAllReadResponse{Updated: updated}, nil
}

// notify records an activity entry; failures are logged and never fail the caller
func notify(ctx context.Context, params ServiceParams, notificationType types.NotificationType, message string, metadata map[string]string) {
	if params.NotificationRepo == nil {
		return
	}
	if _, err := NewNotificationService(params).Create(ctx, notificationType, message, metadata); err != nil {
		params.Logger.Warnw("failed to record notification",
			"type", notificationType,
			"error", err,
		)
	}
}
