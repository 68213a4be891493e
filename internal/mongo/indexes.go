package mongo

import (
	"context"
	"fmt"

	"github.com/feesync/feesync/internal/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Indexes lists the indexes each collection needs. Natural keys are unique.
func Indexes() map[string][]mongo.IndexModel {
	unique := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true).SetName(field + "_unique"),
		}
	}
	asc := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetName(field + "_1"),
		}
	}
	desc := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: -1}},
			Options: options.Index().SetName(field + "_-1"),
		}
	}

	return map[string][]mongo.IndexModel{
		CollectionCustomers: {
			unique("contact_id"),
			asc("email"),
			asc("credentials.reset_token_hash"),
		},
		CollectionInvoices: {
			unique("invoice_id"),
			asc("customer_id"),
			desc("date"),
		},
		CollectionPayments: {
			unique("payment_id"),
			asc("customer_id"),
			desc("date"),
		},
		CollectionTokens: {
			desc("updated_at"),
		},
		CollectionNotifications: {
			unique("id"),
			desc("created_at"),
		},
		CollectionUsers: {
			unique("id"),
			unique("email"),
		},
		CollectionSyncLogs: {
			unique("id"),
			desc("started_at"),
		},
	}
}

// EnsureIndexes creates any missing index. Existing indexes with the same
// definition are left untouched by the server.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	for collection, models := range Indexes() {
		names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
		log.Debugw("ensured indexes", "collection", collection, "indexes", names)
	}
	return nil
}
