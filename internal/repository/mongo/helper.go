package mongo

import (
	"context"
	"regexp"
	"strings"

	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/types"
	"github.com/getsentry/sentry-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StartRepositorySpan creates a new span for a repository operation
// Returns nil if Sentry is not available in the context
func StartRepositorySpan(ctx context.Context, repository, operation string, params map[string]interface{}) *sentry.Span {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		return nil
	}

	span := sentry.StartSpan(ctx, "repository."+repository+"."+operation)
	if span != nil {
		span.Description = "repository." + repository + "." + operation
		span.Op = "db.mongodb"

		span.SetData("repository", repository)
		span.SetData("operation", operation)
		for k, v := range params {
			span.SetData(k, v)
		}
	}

	return span
}

// FinishSpan safely finishes a span, handling nil spans
func FinishSpan(span *sentry.Span) {
	if span != nil {
		span.Finish()
	}
}

// SetSpanError marks a span as failed and adds error information
func SetSpanError(span *sentry.Span, err error) {
	if span == nil || err == nil {
		return
	}

	span.Status = sentry.SpanStatusInternalError
	span.SetData("error", err.Error())
}

// handleError maps driver errors onto the application error sentinels.
// entity and key end up in the hint shown to callers.
func handleError(err error, entity, key string) error {
	if err == nil {
		return nil
	}

	switch {
	case ierr.Is(err, mongo.ErrNoDocuments):
		return ierr.WithError(err).
			WithHintf("%s %s not found", entity, key).
			WithReportableDetails(map[string]any{"id": key}).
			Mark(ierr.ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return ierr.WithError(err).
			WithHintf("%s %s already exists", entity, key).
			WithReportableDetails(map[string]any{"id": key}).
			Mark(ierr.ErrAlreadyExists)
	default:
		return ierr.WithError(err).
			WithHintf("Failed to access %s records", entity).
			Mark(ierr.ErrDatabase)
	}
}

// findOptions applies sort, skip and limit from a query filter.
// sortFields maps accepted sort keys to document fields.
func findOptions(f *types.QueryFilter, sortFields map[string]string, defaultSort string) *options.FindOptions {
	opts := options.Find()

	field, ok := sortFields[f.GetSort()]
	if !ok {
		field = defaultSort
	}
	direction := -1
	if f.GetOrder() == types.OrderAsc {
		direction = 1
	}
	opts.SetSort(bson.D{{Key: field, Value: direction}})

	if !f.IsUnlimited() {
		opts.SetSkip(int64(f.GetOffset()))
		opts.SetLimit(int64(f.GetLimit()))
	}
	return opts
}

func regexpQuote(s string) string {
	return regexp.QuoteMeta(s)
}

// searchClause matches term case-insensitively against any of fields.
func searchClause(term string, fields ...string) bson.M {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	pattern := bson.M{"$regex": regexpQuote(term), "$options": "i"}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: pattern})
	}
	return bson.M{"$or": or}
}

// monthClause restricts field to the calendar month in UTC.
func monthClause(field, month string) (bson.M, error) {
	if month == "" {
		return nil, nil
	}
	m, err := types.ParseMonth(month)
	if err != nil {
		return nil, err
	}
	return bson.M{field: bson.M{"$gte": m.Start(), "$lt": m.End()}}, nil
}

// and combines the non-empty clauses.
func and(clauses ...bson.M) bson.M {
	parts := make(bson.A, 0, len(clauses))
	for _, c := range clauses {
		if len(c) > 0 {
			parts = append(parts, c)
		}
	}
	switch len(parts) {
	case 0:
		return bson.M{}
	case 1:
		return parts[0].(bson.M)
	default:
		return bson.M{"$and": parts}
	}
}

// nonNil keeps $in and $nin operands from encoding as null.
func nonNil(keys []string) []string {
	if keys == nil {
		return []string{}
	}
	return keys
}

// decodeAll drains a cursor into a slice of pointers.
func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]*T, error) {
	defer cur.Close(ctx)

	items := make([]*T, 0)
	for cur.Next(ctx) {
		item := new(T)
		if err := cur.Decode(item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// toDocuments converts typed documents for InsertMany.
func toDocuments[T any](items []*T) []interface{} {
	docs := make([]interface{}, len(items))
	for i, item := range items {
		docs[i] = item
	}
	return docs
}
