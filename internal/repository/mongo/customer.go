package mongo

import (
	"context"
	"strings"
	"time"

	"github.com/feesync/feesync/internal/domain/credential"
	domainCustomer "github.com/feesync/feesync/internal/domain/customer"
	"github.com/feesync/feesync/internal/logger"
	mongodb "github.com/feesync/feesync/internal/mongo"
	"github.com/feesync/feesync/internal/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var customerSortFields = map[string]string{
	"created_at":   "created_at",
	"updated_at":   "updated_at",
	"name":         "customer_name",
	"contact_name": "contact_name",
	"email":        "email",
	"outstanding":  "outstanding_receivable_amount",
}

type customerRepository struct {
	coll *mongo.Collection
	log  *logger.Logger
}

func NewCustomerRepository(db *mongo.Database, log *logger.Logger) domainCustomer.Repository {
	return &customerRepository{
		coll: db.Collection(mongodb.CollectionCustomers),
		log:  log,
	}
}

// profileFields are the fields owned by the provider and the admin edit form.
// Credentials and creation stamps are never part of it.
func customerProfileFields(c *domainCustomer.Customer) bson.M {
	return bson.M{
		"contact_name":                  c.ContactName,
		"customer_name":                 c.CustomerName,
		"company_name":                  c.CompanyName,
		"email":                         c.Email,
		"phone":                         c.Phone,
		"mobile":                        c.Mobile,
		"course":                        c.Course,
		"batch":                         c.Batch,
		"status":                        c.Status,
		"outstanding_receivable_amount": c.OutstandingReceivableAmount,
		"currency_code":                 c.CurrencyCode,
		"source":                        c.Source,
		"updated_at":                    c.UpdatedAt,
		"updated_by":                    c.UpdatedBy,
	}
}

func (r *customerRepository) Create(ctx context.Context, c *domainCustomer.Customer) error {
	span := StartRepositorySpan(ctx, "customer", "create", map[string]interface{}{
		"contact_id": c.ContactID,
	})
	defer FinishSpan(span)

	r.log.Debugw("creating customer", "contact_id", c.ContactID, "source", c.Source)

	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		SetSpanError(span, err)
		return handleError(err, "Customer", c.ContactID)
	}
	return nil
}

func (r *customerRepository) Get(ctx context.Context, contactID string) (*domainCustomer.Customer, error) {
	return r.findOne(ctx, "get", bson.M{"contact_id": contactID}, contactID)
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*domainCustomer.Customer, error) {
	email = strings.TrimSpace(email)
	// provider emails keep their original casing
	filter := bson.M{"email": bson.M{"$regex": "^" + regexpQuote(email) + "$", "$options": "i"}}
	return r.findOne(ctx, "get_by_email", filter, email)
}

func (r *customerRepository) GetByResetToken(ctx context.Context, tokenHash string) (*domainCustomer.Customer, error) {
	return r.findOne(ctx, "get_by_reset_token", bson.M{"credentials.reset_token_hash": tokenHash}, "for reset token")
}

func (r *customerRepository) findOne(ctx context.Context, op string, filter bson.M, key string) (*domainCustomer.Customer, error) {
	span := StartRepositorySpan(ctx, "customer", op, nil)
	defer FinishSpan(span)

	var c domainCustomer.Customer
	if err := r.coll.FindOne(ctx, filter).Decode(&c); err != nil {
		SetSpanError(span, err)
		return nil, handleError(err, "Customer", key)
	}
	return &c, nil
}

func (r *customerRepository) buildFilter(filter *types.CustomerFilter) bson.M {
	if filter == nil {
		return bson.M{}
	}
	clauses := []bson.M{
		searchClause(filter.Search, "contact_id", "contact_name", "customer_name", "email", "phone", "mobile"),
	}
	if len(filter.ContactIDs) > 0 {
		clauses = append(clauses, bson.M{"contact_id": bson.M{"$in": filter.ContactIDs}})
	}
	if filter.Source != nil {
		clauses = append(clauses, bson.M{"source": *filter.Source})
	}
	return and(clauses...)
}

func (r *customerRepository) List(ctx context.Context, filter *types.CustomerFilter) ([]*domainCustomer.Customer, error) {
	if filter == nil {
		filter = types.NewCustomerFilter()
	}

	span := StartRepositorySpan(ctx, "customer", "list", map[string]interface{}{
		"page":  filter.GetPage(),
		"limit": filter.GetLimit(),
	})
	defer FinishSpan(span)

	cur, err := r.coll.Find(ctx, r.buildFilter(filter), findOptions(filter.QueryFilter, customerSortFields, "created_at"))
	if err != nil {
		SetSpanError(span, err)
		return nil, handleError(err, "Customer", "")
	}
	customers, err := decodeAll[domainCustomer.Customer](ctx, cur)
	if err != nil {
		SetSpanError(span, err)
		return nil, handleError(err, "Customer", "")
	}
	return customers, nil
}

func (r *customerRepository) Count(ctx context.Context, filter *types.CustomerFilter) (int, error) {
	span := StartRepositorySpan(ctx, "customer", "count", nil)
	defer FinishSpan(span)

	n, err := r.coll.CountDocuments(ctx, r.buildFilter(filter))
	if err != nil {
		SetSpanError(span, err)
		return 0, handleError(err, "Customer", "")
	}
	return int(n), nil
}

func (r *customerRepository) ListAll(ctx context.Context, filter *types.CustomerFilter) ([]*domainCustomer.Customer, error) {
	if filter == nil {
		filter = types.NewNoLimitCustomerFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewNoLimitQueryFilter()
	}
	filter.Limit = nil
	return r.List(ctx, filter)
}

func (r *customerRepository) Update(ctx context.Context, c *domainCustomer.Customer) error {
	span := StartRepositorySpan(ctx, "customer", "update", map[string]interface{}{
		"contact_id": c.ContactID,
	})
	defer FinishSpan(span)

	r.log.Debugw("updating customer", "contact_id", c.ContactID)

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"contact_id": c.ContactID},
		bson.M{"$set": customerProfileFields(c)},
	)
	if err != nil {
		SetSpanError(span, err)
		return handleError(err, "Customer", c.ContactID)
	}
	if res.MatchedCount == 0 {
		return handleError(mongo.ErrNoDocuments, "Customer", c.ContactID)
	}
	return nil
}

func (r *customerRepository) UpdateCredentials(ctx context.Context, contactID string, creds *credential.Credentials) error {
	span := StartRepositorySpan(ctx, "customer", "update_credentials", nil)
	defer FinishSpan(span)

	update := bson.M{"$set": bson.M{"credentials": creds, "updated_at": time.Now().UTC()}}
	if creds == nil {
		update = bson.M{"$unset": bson.M{"credentials": ""}}
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"contact_id": contactID}, update)
	if err != nil {
		SetSpanError(span, err)
		return handleError(err, "Customer", contactID)
	}
	if res.MatchedCount == 0 {
		return handleError(mongo.ErrNoDocuments, "Customer", contactID)
	}
	return nil
}

func (r *customerRepository) Delete(ctx context.Context, contactID string) error {
	span := StartRepositorySpan(ctx, "customer", "delete", map[string]interface{}{
		"contact_id": contactID,
	})
	defer FinishSpan(span)

	r.log.Debugw("deleting customer", "contact_id", contactID)

	res, err := r.coll.DeleteOne(ctx, bson.M{"contact_id": contactID})
	if err != nil {
		SetSpanError(span, err)
		return handleError(err, "Customer", contactID)
	}
	if res.DeletedCount == 0 {
		return handleError(mongo.ErrNoDocuments, "Customer", contactID)
	}
	return nil
}

func (r *customerRepository) DeleteAll(ctx context.Context) (int, error) {
	span := StartRepositorySpan(ctx, "customer", "delete_all", nil)
	defer FinishSpan(span)

	res, err := r.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		SetSpanError(span, err)
		return 0, handleError(err, "Customer", "")
	}
	return int(res.DeletedCount), nil
}

func (r *customerRepository) InsertMany(ctx context.Context, customers []*domainCustomer.Customer) error {
	if len(customers) == 0 {
		return nil
	}

	span := StartRepositorySpan(ctx, "customer", "insert_many", map[string]interface{}{
		"count": len(customers),
	})
	defer FinishSpan(span)

	if _, err := r.coll.InsertMany(ctx, toDocuments(customers)); err != nil {
		SetSpanError(span, err)
		return handleError(err, "Customer", "")
	}
	return nil
}

func (r *customerRepository) UpsertMany(ctx context.Context, customers []*domainCustomer.Customer) (int, error) {
	if len(customers) == 0 {
		return 0, nil
	}

	span := StartRepositorySpan(ctx, "customer", "upsert_many", map[string]interface{}{
		"count": len(customers),
	})
	defer FinishSpan(span)

	models := make([]mongo.WriteModel, 0, len(customers))
	for _, c := range customers {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"contact_id": c.ContactID}).
			SetUpdate(bson.M{
				"$set": customerProfileFields(c),
				"$setOnInsert": bson.M{
					"created_at": c.CreatedAt,
					"created_by": c.CreatedBy,
				},
			}).
			SetUpsert(true))
	}

	res, err := r.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		SetSpanError(span, err)
		return 0, handleError(err, "Customer", "")
	}
	return int(res.MatchedCount + res.UpsertedCount), nil
}

func (r *customerRepository) DeleteExcept(ctx context.Context, contactIDs []string) (int, error) {
	span := StartRepositorySpan(ctx, "customer", "delete_except", map[string]interface{}{
		"keep": len(contactIDs),
	})
	defer FinishSpan(span)

	res, err := r.coll.DeleteMany(ctx, bson.M{"contact_id": bson.M{"$nin": nonNil(contactIDs)}})
	if err != nil {
		SetSpanError(span, err)
		return 0, handleError(err, "Customer", "")
	}
	return int(res.DeletedCount), nil
}
