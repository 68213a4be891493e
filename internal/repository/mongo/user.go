package mongo

import (
	"context"
	"strings"
	"time"

	"github.com/feesync/feesync/internal/domain/credential"
	domainUser "github.com/feesync/feesync/internal/domain/user"
	"github.com/feesync/feesync/internal/logger"
	mongodb "github.com/feesync/feesync/internal/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type userRepository struct {
	coll *mongo.Collection
	log  *logger.Logger
}

func NewUserRepository(db *mongo.Database, log *logger.Logger) domainUser.Repository {
	return &userRepository{
		coll: db.Collection(mongodb.CollectionUsers),
		log:  log,
	}
}

func (r *userRepository) Create(ctx context.Context, u *domainUser.User) error {
	span := StartRepositorySpan(ctx, "user", "create", nil)
	defer FinishSpan(span)

	r.log.Debugw("creating user", "user_id", u.ID, "email", u.Email)

	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		SetSpanError(span, err)
		return handleError(err, "User", u.Email)
	}
	return nil
}

func (r *userRepository) findOne(ctx context.Context, op string, filter bson.M, key string) (*domainUser.User, error) {
	span := StartRepositorySpan(ctx, "user", op, nil)
	defer FinishSpan(span)

	var u domainUser.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		SetSpanError(span, err)
		return nil, handleError(err, "User", key)
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domainUser.User, error) {
	return r.findOne(ctx, "get", bson.M{"id": id}, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domainUser.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.findOne(ctx, "get_by_email", bson.M{"email": email}, email)
}

func (r *userRepository) GetByResetToken(ctx context.Context, tokenHash string) (*domainUser.User, error) {
	return r.findOne(ctx, "get_by_reset_token", bson.M{"credentials.reset_token_hash": tokenHash}, "for reset token")
}

func (r *userRepository) UpdateCredentials(ctx context.Context, id string, creds *credential.Credentials) error {
	span := StartRepositorySpan(ctx, "user", "update_credentials", nil)
	defer FinishSpan(span)

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"credentials": creds, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		SetSpanError(span, err)
		return handleError(err, "User", id)
	}
	if res.MatchedCount == 0 {
		return handleError(mongo.ErrNoDocuments, "User", id)
	}
	return nil
}

func (r *userRepository) TouchLogin(ctx context.Context, id string) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"last_login_at": time.Now().UTC()}})
	return handleError(err, "User", id)
}
