package synclog

import (
	"context"

	"github.com/feesync/feesync/internal/types"
)

type Repository interface {
	Create(ctx context.Context, log *SyncLog) error
	Update(ctx context.Context, log *SyncLog) error
	List(ctx context.Context, filter *types.SyncLogFilter) ([]*SyncLog, error)
	Count(ctx context.Context, filter *types.SyncLogFilter) (int, error)
}
