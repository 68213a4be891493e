package mongo

import (
	"context"

	domainToken "github.com/feesync/feesync/internal/domain/token"
	"github.com/feesync/feesync/internal/logger"
	mongodb "github.com/feesync/feesync/internal/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type tokenRepository struct {
	coll *mongo.Collection
	log  *logger.Logger
}

func NewTokenRepository(db *mongo.Database, log *logger.Logger) domainToken.Repository {
	return &tokenRepository{
		coll: db.Collection(mongodb.CollectionTokens),
		log:  log,
	}
}

func (r *tokenRepository) GetLatest(ctx context.Context) (*domainToken.Token, error) {
	span := StartRepositorySpan(ctx, "token", "get_latest", nil)
	defer FinishSpan(span)

	opts := options.FindOne().SetSort(bson.D{{Key: "updated_at", Value: -1}})

	var t domainToken.Token
	if err := r.coll.FindOne(ctx, bson.M{}, opts).Decode(&t); err != nil {
		SetSpanError(span, err)
		return nil, handleError(err, "Token", "")
	}
	return &t, nil
}

// Save keeps a single token document by upserting against an empty filter
func (r *tokenRepository) Save(ctx context.Context, t *domainToken.Token) error {
	span := StartRepositorySpan(ctx, "token", "save", nil)
	defer FinishSpan(span)

	r.log.Debugw("saving provider token",
		"organization_id", t.OrganizationID,
		"token_expiry", t.TokenExpiry,
	)

	_, err := r.coll.UpdateOne(ctx, bson.M{}, bson.M{"$set": t}, options.Update().SetUpsert(true))
	if err != nil {
		SetSpanError(span, err)
		return handleError(err, "Token", "")
	}
	return nil
}
