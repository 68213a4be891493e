package mongo

import (
	"context"

	domainPayment "github.com/feesync/feesync/internal/domain/payment"
	"github.com/feesync/feesync/internal/logger"
	mongodb "github.com/feesync/feesync/internal/mongo"
	"github.com/feesync/feesync/internal/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var paymentSortFields = map[string]string{
	"created_at": "created_at",
	"date":       "date",
	"amount":     "amount",
	"number":     "payment_number",
}

type paymentRepository struct {
	coll *mongo.Collection
	log  *logger.Logger
}

func NewPaymentRepository(db *mongo.Database, log *logger.Logger) domainPayment.Repository {
	return &paymentRepository{
		coll: db.Collection(mongodb.CollectionPayments),
		log:  log,
	}
}

func paymentFields(p *domainPayment.Payment) bson.M {
	return bson.M{
		"payment_number":   p.PaymentNumber,
		"customer_id":      p.CustomerID,
		"customer_name":    p.CustomerName,
		"amount":           p.Amount,
		"date":             p.Date,
		"payment_mode":     p.PaymentMode,
		"reference_number": p.ReferenceNumber,
		"description":      p.Description,
		"invoice_numbers":  p.InvoiceNumbers,
		"currency_code":    p.CurrencyCode,
		"source":           p.Source,
		"updated_at":       p.UpdatedAt,
		"updated_by":       p.UpdatedBy,
	}
}

func (r *paymentRepository) Create(ctx context.Context, p *domainPayment.Payment) error {
	span := StartRepositorySpan(ctx, "payment", "create", map[string]interface{}{
		"payment_id": p.PaymentID,
	})
	defer FinishSpan(span)

	r.log.Debugw("creating payment",
		"payment_id", p.PaymentID,
		"customer_id", p.CustomerID,
		"amount", p.Amount,
		"source", p.Source,
	)

	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		SetSpanError(span, err)
		return handleError(err, "Payment", p.PaymentID)
	}
	return nil
}

func (r *paymentRepository) Get(ctx context.Context, paymentID string) (*domainPayment.Payment, error) {
	span := StartRepositorySpan(ctx, "payment", "get", map[string]interface{}{
		"payment_id": paymentID,
	})
	defer FinishSpan(span)

	var p domainPayment.Payment
	if err := r.coll.FindOne(ctx, bson.M{"payment_id": paymentID}).Decode(&p); err != nil {
		SetSpanError(span, err)
		return nil, handleError(err, "Payment", paymentID)
	}
	return &p, nil
}

func (r *paymentRepository) buildFilter(filter *types.PaymentFilter) (bson.M, error) {
	if filter == nil {
		return bson.M{}, nil
	}
	month, err := monthClause("date", filter.Month)
	if err != nil {
		return nil, err
	}
	clauses := []bson.M{
		searchClause(filter.Search, "payment_number", "payment_id", "customer_name", "customer_id", "reference_number"),
		month,
	}
	if filter.CustomerID != "" {
		clauses = append(clauses, bson.M{"customer_id": filter.CustomerID})
	}
	if filter.Source != nil {
		clauses = append(clauses, bson.M{"source": *filter.Source})
	}
	return and(clauses...), nil
}

func (r *paymentRepository) List(ctx context.Context, filter *types.PaymentFilter) ([]*domainPayment.Payment, error) {
	if filter == nil {
		filter = types.NewPaymentFilter()
	}

	span := StartRepositorySpan(ctx, "payment", "list", map[string]interface{}{
		"page":        filter.GetPage(),
		"limit":       filter.GetLimit(),
		"customer_id": filter.CustomerID,
		"month":       filter.Month,
	})
	defer FinishSpan(span)

	query, err := r.buildFilter(filter)
	if err != nil {
		return nil, err
	}

	cur, err := r.coll.Find(ctx, query, findOptions(filter.QueryFilter, paymentSortFields, "date"))
	if err != nil {
		SetSpanError(span, err)
		return nil, handleError(err, "Payment", "")
	}
	payments, err := decodeAll[domainPayment.Payment](ctx, cur)
	if err != nil {
		SetSpanError(span, err)
		return nil, handleError(err, "Payment", "")
	}
	return payments, nil
}

func (r *paymentRepository) Count(ctx context.Context, filter *types.PaymentFilter) (int, error) {
	span := StartRepositorySpan(ctx, "payment", "count", nil)
	defer FinishSpan(span)

	query, err := r.buildFilter(filter)
	if err != nil {
		return 0, err
	}

	n, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		SetSpanError(span, err)
		return 0, handleError(err, "Payment", "")
	}
	return int(n), nil
}

func (r *paymentRepository) ListAll(ctx context.Context, filter *types.PaymentFilter) ([]*domainPayment.Payment, error) {
	if filter == nil {
		filter = types.NewNoLimitPaymentFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewNoLimitQueryFilter()
	}
	filter.Limit = nil
	return r.List(ctx, filter)
}

func (r *paymentRepository) Update(ctx context.Context, p *domainPayment.Payment) error {
	span := StartRepositorySpan(ctx, "payment", "update", map[string]interface{}{
		"payment_id": p.PaymentID,
	})
	defer FinishSpan(span)

	r.log.Debugw("updating payment", "payment_id", p.PaymentID)

	res, err := r.coll.UpdateOne(ctx, bson.M{"payment_id": p.PaymentID}, bson.M{"$set": paymentFields(p)})
	if err != nil {
		SetSpanError(span, err)
		return handleError(err, "Payment", p.PaymentID)
	}
	if res.MatchedCount == 0 {
		return handleError(mongo.ErrNoDocuments, "Payment", p.PaymentID)
	}
	return nil
}

func (r *paymentRepository) Delete(ctx context.Context, paymentID string) error {
	span := StartRepositorySpan(ctx, "payment", "delete", map[string]interface{}{
		"payment_id": paymentID,
	})
	defer FinishSpan(span)

	r.log.Debugw("deleting payment", "payment_id", paymentID)

	res, err := r.coll.DeleteOne(ctx, bson.M{"payment_id": paymentID})
	if err != nil {
		SetSpanError(span, err)
		return handleError(err, "Payment", paymentID)
	}
	if res.DeletedCount == 0 {
		return handleError(mongo.ErrNoDocuments, "Payment", paymentID)
	}
	return nil
}

func (r *paymentRepository) DeleteAll(ctx context.Context) (int, error) {
	span := StartRepositorySpan(ctx, "payment", "delete_all", nil)
	defer FinishSpan(span)

	res, err := r.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		SetSpanError(span, err)
		return 0, handleError(err, "Payment", "")
	}
	return int(res.DeletedCount), nil
}

func (r *paymentRepository) InsertMany(ctx context.Context, payments []*domainPayment.Payment) error {
	if len(payments) == 0 {
		return nil
	}

	span := StartRepositorySpan(ctx, "payment", "insert_many", map[string]interface{}{
		"count": len(payments),
	})
	defer FinishSpan(span)

	if _, err := r.coll.InsertMany(ctx, toDocuments(payments)); err != nil {
		SetSpanError(span, err)
		return handleError(err, "Payment", "")
	}
	return nil
}

func (r *paymentRepository) UpsertMany(ctx context.Context, payments []*domainPayment.Payment) (int, error) {
	if len(payments) == 0 {
		return 0, nil
	}

	span := StartRepositorySpan(ctx, "payment", "upsert_many", map[string]interface{}{
		"count": len(payments),
	})
	defer FinishSpan(span)

	models := make([]mongo.WriteModel, 0, len(payments))
	for _, p := range payments {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"payment_id": p.PaymentID}).
			SetUpdate(bson.M{
				"$set": paymentFields(p),
				"$setOnInsert": bson.M{
					"created_at": p.CreatedAt,
					"created_by": p.CreatedBy,
				},
			}).
			SetUpsert(true))
	}

	res, err := r.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		SetSpanError(span, err)
		return 0, handleError(err, "Payment", "")
	}
	return int(res.MatchedCount + res.UpsertedCount), nil
}

func (r *paymentRepository) DeleteExcept(ctx context.Context, paymentIDs []string) (int, error) {
	span := StartRepositorySpan(ctx, "payment", "delete_except", map[string]interface{}{
		"keep": len(paymentIDs),
	})
	defer FinishSpan(span)

	res, err := r.coll.DeleteMany(ctx, bson.M{"payment_id": bson.M{"$nin": nonNil(paymentIDs)}})
	if err != nil {
		SetSpanError(span, err)
		return 0, handleError(err, "Payment", "")
	}
	return int(res.DeletedCount), nil
}
