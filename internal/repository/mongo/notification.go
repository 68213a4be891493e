package mongo

import (
	"context"

	domainNotification "github.com/feesync/feesync/internal/domain/notification"
	"github.com/feesync/feesync/internal/logger"
	mongodb "github.com/feesync/feesync/internal/mongo"
	"github.com/feesync/feesync/internal/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type notificationRepository struct {
	coll *mongo.Collection
	log  *logger.Logger
}

func NewNotificationRepository(db *mongo.Database, log *logger.Logger) domainNotification.Repository {
	return &notificationRepository{
		coll: db.Collection(mongodb.CollectionNotifications),
		log:  log,
	}
}

func (r *notificationRepository) Create(ctx context.Context, n *domainNotification.Notification) error {
	span := StartRepositorySpan(ctx, "notification", "create", map[string]interface{}{
		"type": n.Type,
	})
	defer FinishSpan(span)

	if _, err := r.coll.InsertOne(ctx, n); err != nil {
		SetSpanError(span, err)
		return handleError(err, "Notification", n.ID)
	}
	return nil
}

func (r *notificationRepository) buildFilter(filter *types.NotificationFilter) bson.M {
	query := bson.M{}
	if filter == nil {
		return query
	}
	if filter.UnreadOnly {
		query["read"] = false
	}
	if filter.Type != nil {
		query["type"] = *filter.Type
	}
	return query
}

func (r *notificationRepository) List(ctx context.Context, filter *types.NotificationFilter) ([]*domainNotification.Notification, error) {
	if filter == nil {
		filter = types.NewNotificationFilter()
	}

	span := StartRepositorySpan(ctx, "notification", "list", nil)
	defer FinishSpan(span)

	opts := findOptions(filter.QueryFilter, map[string]string{"created_at": "created_at"}, "created_at")
	cur, err := r.coll.Find(ctx, r.buildFilter(filter), opts)
	if err != nil {
		SetSpanError(span, err)
		return nil, handleError(err, "Notification", "")
	}
	items, err := decodeAll[domainNotification.Notification](ctx, cur)
	if err != nil {
		SetSpanError(span, err)
		return nil, handleError(err, "Notification", "")
	}
	return items, nil
}

func (r *notificationRepository) Count(ctx context.Context, filter *types.NotificationFilter) (int, error) {
	span := StartRepositorySpan(ctx, "notification", "count", nil)
	defer FinishSpan(span)

	n, err := r.coll.CountDocuments(ctx, r.buildFilter(filter))
	if err != nil {
		SetSpanError(span, err)
		return 0, handleError(err, "Notification", "")
	}
	return int(n), nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string) error {
	span := StartRepositorySpan(ctx, "notification", "mark_read", map[string]interface{}{
		"id": id,
	})
	defer FinishSpan(span)

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		SetSpanError(span, err)
		return handleError(err, "Notification", id)
	}
	if res.MatchedCount == 0 {
		return handleError(mongo.ErrNoDocuments, "Notification", id)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context) (int, error) {
	span := StartRepositorySpan(ctx, "notification", "mark_all_read", nil)
	defer FinishSpan(span)

	res, err := r.coll.UpdateMany(ctx, bson.M{"read": false}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		SetSpanError(span, err)
		return 0, handleError(err, "Notification", "")
	}
	return int(res.ModifiedCount), nil
}
