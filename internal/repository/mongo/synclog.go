package mongo

import (
	"context"

	domainSyncLog "github.com/feesync/feesync/internal/domain/synclog"
	"github.com/feesync/feesync/internal/logger"
	mongodb "github.com/feesync/feesync/internal/mongo"
	"github.com/feesync/feesync/internal/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type syncLogRepository struct {
	coll *mongo.Collection
	log  *logger.Logger
}

func NewSyncLogRepository(db *mongo.Database, log *logger.Logger) domainSyncLog.Repository {
	return &syncLogRepository{
		coll: db.Collection(mongodb.CollectionSyncLogs),
		log:  log,
	}
}

func (r *syncLogRepository) Create(ctx context.Context, l *domainSyncLog.SyncLog) error {
	span := StartRepositorySpan(ctx, "synclog", "create", nil)
	defer FinishSpan(span)

	if _, err := r.coll.InsertOne(ctx, l); err != nil {
		SetSpanError(span, err)
		return handleError(err, "Sync log", l.ID)
	}
	return nil
}

func (r *syncLogRepository) Update(ctx context.Context, l *domainSyncLog.SyncLog) error {
	span := StartRepositorySpan(ctx, "synclog", "update", map[string]interface{}{
		"status": l.Status,
		"stage":  l.Stage,
	})
	defer FinishSpan(span)

	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": l.ID}, l)
	if err != nil {
		SetSpanError(span, err)
		return handleError(err, "Sync log", l.ID)
	}
	if res.MatchedCount == 0 {
		return handleError(mongo.ErrNoDocuments, "Sync log", l.ID)
	}
	return nil
}

func (r *syncLogRepository) buildFilter(filter *types.SyncLogFilter) bson.M {
	query := bson.M{}
	if filter != nil && filter.Status != nil {
		query["status"] = *filter.Status
	}
	return query
}

func (r *syncLogRepository) List(ctx context.Context, filter *types.SyncLogFilter) ([]*domainSyncLog.SyncLog, error) {
	if filter == nil {
		filter = types.NewSyncLogFilter()
	}

	span := StartRepositorySpan(ctx, "synclog", "list", nil)
	defer FinishSpan(span)

	opts := findOptions(filter.QueryFilter, map[string]string{"started_at": "started_at"}, "started_at")
	cur, err := r.coll.Find(ctx, r.buildFilter(filter), opts)
	if err != nil {
		SetSpanError(span, err)
		return nil, handleError(err, "Sync log", "")
	}
	items, err := decodeAll[domainSyncLog.SyncLog](ctx, cur)
	if err != nil {
		SetSpanError(span, err)
		return nil, handleError(err, "Sync log", "")
	}
	return items, nil
}

func (r *syncLogRepository) Count(ctx context.Context, filter *types.SyncLogFilter) (int, error) {
	n, err := r.coll.CountDocuments(ctx, r.buildFilter(filter))
	if err != nil {
		return 0, handleError(err, "Sync log", "")
	}
	return int(n), nil
}
