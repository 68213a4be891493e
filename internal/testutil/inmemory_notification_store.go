package testutil

import (
	"context"

	"github.com/feesync/feesync/internal/domain/notification"
	"github.com/feesync/feesync/internal/types"
	"github.com/samber/lo"
)

// InMemoryNotificationStore implements notification.Repository
type InMemoryNotificationStore struct {
	*InMemoryStore[*notification.Notification]
}

func NewInMemoryNotificationStore() *InMemoryNotificationStore {
	return &InMemoryNotificationStore{
		InMemoryStore: NewInMemoryStore[*notification.Notification](),
	}
}

func copyNotification(n *notification.Notification) *notification.Notification {
	cp := *n
	cp.Metadata = lo.Assign(map[string]string{}, n.Metadata)
	return &cp
}

func notificationFilterFn(ctx context.Context, n *notification.Notification, filter interface{}) bool {
	f, ok := filter.(*types.NotificationFilter)
	if !ok || f == nil {
		return true
	}
	if f.UnreadOnly && n.Read {
		return false
	}
	if f.Type != nil && n.Type != *f.Type {
		return false
	}
	return true
}

func notificationSortFn(i, j *notification.Notification) bool {
	if !i.CreatedAt.Equal(j.CreatedAt) {
		return i.CreatedAt.After(j.CreatedAt)
	}
	return i.ID > j.ID
}

func (s *InMemoryNotificationStore) Create(ctx context.Context, n *notification.Notification) error {
	return s.InMemoryStore.Create(ctx, n.ID, copyNotification(n))
}

func (s *InMemoryNotificationStore) List(ctx context.Context, filter *types.NotificationFilter) ([]*notification.Notification, error) {
	if filter == nil {
		filter = &types.NotificationFilter{QueryFilter: types.NewNoLimitQueryFilter()}
	}
	items, err := s.InMemoryStore.List(ctx, filter, notificationFilterFn, notificationSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(n *notification.Notification, _ int) *notification.Notification {
		return copyNotification(n)
	}), nil
}

func (s *InMemoryNotificationStore) Count(ctx context.Context, filter *types.NotificationFilter) (int, error) {
	if filter == nil {
		filter = &types.NotificationFilter{QueryFilter: types.NewNoLimitQueryFilter()}
	}
	return s.InMemoryStore.Count(ctx, filter, notificationFilterFn)
}

func (s *InMemoryNotificationStore) MarkRead(ctx context.Context, id string) error {
	n, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return err
	}
	updated := copyNotification(n)
	updated.Read = true
	return s.InMemoryStore.Update(ctx, id, updated)
}

func (s *InMemoryNotificationStore) MarkAllRead(ctx context.Context) (int, error) {
	unread, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, n *notification.Notification, _ interface{}) bool {
		return !n.Read
	}, nil)
	if err != nil {
		return 0, err
	}
	for _, n := range unread {
		updated := copyNotification(n)
		updated.Read = true
		s.Put(ctx, n.ID, updated)
	}
	return len(unread), nil
}
