package notification

import (
	"context"

	"github.com/feesync/feesync/internal/types"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	List(ctx context.Context, filter *types.NotificationFilter) ([]*Notification, error)
	Count(ctx context.Context, filter *types.NotificationFilter) (int, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) (int, error)
}
