package testutil

import (
	"context"

	"github.com/feesync/feesync/internal/domain/synclog"
	"github.com/feesync/feesync/internal/types"
	"github.com/samber/lo"
)

// InMemorySyncLogStore implements synclog.Repository
type InMemorySyncLogStore struct {
	*InMemoryStore[*synclog.SyncLog]
}

func NewInMemorySyncLogStore() *InMemorySyncLogStore {
	return &InMemorySyncLogStore{
		InMemoryStore: NewInMemoryStore[*synclog.SyncLog](),
	}
}

func copySyncLog(l *synclog.SyncLog) *synclog.SyncLog {
	cp := *l
	if l.FinishedAt != nil {
		cp.FinishedAt = lo.ToPtr(*l.FinishedAt)
	}
	return &cp
}

func syncLogFilterFn(ctx context.Context, l *synclog.SyncLog, filter interface{}) bool {
	f, ok := filter.(*types.SyncLogFilter)
	if !ok || f == nil || f.Status == nil {
		return true
	}
	return l.Status == *f.Status
}

func (s *InMemorySyncLogStore) Create(ctx context.Context, l *synclog.SyncLog) error {
	return s.InMemoryStore.Create(ctx, l.ID, copySyncLog(l))
}

func (s *InMemorySyncLogStore) Update(ctx context.Context, l *synclog.SyncLog) error {
	return s.InMemoryStore.Update(ctx, l.ID, copySyncLog(l))
}

func (s *InMemorySyncLogStore) List(ctx context.Context, filter *types.SyncLogFilter) ([]*synclog.SyncLog, error) {
	if filter == nil {
		filter = &types.SyncLogFilter{QueryFilter: types.NewNoLimitQueryFilter()}
	}
	items, err := s.InMemoryStore.List(ctx, filter, syncLogFilterFn, func(i, j *synclog.SyncLog) bool {
		if !i.StartedAt.Equal(j.StartedAt) {
			return i.StartedAt.After(j.StartedAt)
		}
		return i.ID > j.ID
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(l *synclog.SyncLog, _ int) *synclog.SyncLog { return copySyncLog(l) }), nil
}

func (s *InMemorySyncLogStore) Count(ctx context.Context, filter *types.SyncLogFilter) (int, error) {
	if filter == nil {
		filter = &types.SyncLogFilter{QueryFilter: types.NewNoLimitQueryFilter()}
	}
	return s.InMemoryStore.Count(ctx, filter, syncLogFilterFn)
}
