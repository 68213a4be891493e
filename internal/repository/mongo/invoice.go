package mongo

import (
	"context"

	domainInvoice "github.com/feesync/feesync/internal/domain/invoice"
	"github.com/feesync/feesync/internal/logger"
	mongodb "github.com/feesync/feesync/internal/mongo"
	"github.com/feesync/feesync/internal/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var invoiceSortFields = map[string]string{
	"created_at": "created_at",
	"date":       "date",
	"due_date":   "due_date",
	"total":      "total",
	"balance":    "balance",
	"number":     "invoice_number",
}

type invoiceRepository struct {
	coll *mongo.Collection
	log  *logger.Logger
}

func NewInvoiceRepository(db *mongo.Database, log *logger.Logger) domainInvoice.Repository {
	return &invoiceRepository{
		coll: db.Collection(mongodb.CollectionInvoices),
		log:  log,
	}
}

func (r *invoiceRepository) Get(ctx context.Context, invoiceID string) (*domainInvoice.Invoice, error) {
	span := StartRepositorySpan(ctx, "invoice", "get", map[string]interface{}{
		"invoice_id": invoiceID,
	})
	defer FinishSpan(span)

	var inv domainInvoice.Invoice
	if err := r.coll.FindOne(ctx, bson.M{"invoice_id": invoiceID}).Decode(&inv); err != nil {
		SetSpanError(span, err)
		return nil, handleError(err, "Invoice", invoiceID)
	}
	return &inv, nil
}

func (r *invoiceRepository) buildFilter(filter *types.InvoiceFilter) (bson.M, error) {
	if filter == nil {
		return bson.M{}, nil
	}
	month, err := monthClause("date", filter.Month)
	if err != nil {
		return nil, err
	}
	clauses := []bson.M{
		searchClause(filter.Search, "invoice_number", "invoice_id", "customer_name", "customer_id"),
		month,
	}
	if filter.CustomerID != "" {
		clauses = append(clauses, bson.M{"customer_id": filter.CustomerID})
	}
	if filter.Status != "" {
		clauses = append(clauses, bson.M{"status": filter.Status})
	}
	return and(clauses...), nil
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*domainInvoice.Invoice, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}

	span := StartRepositorySpan(ctx, "invoice", "list", map[string]interface{}{
		"page":        filter.GetPage(),
		"limit":       filter.GetLimit(),
		"customer_id": filter.CustomerID,
	})
	defer FinishSpan(span)

	query, err := r.buildFilter(filter)
	if err != nil {
		return nil, err
	}

	cur, err := r.coll.Find(ctx, query, findOptions(filter.QueryFilter, invoiceSortFields, "date"))
	if err != nil {
		SetSpanError(span, err)
		return nil, handleError(err, "Invoice", "")
	}
	invoices, err := decodeAll[domainInvoice.Invoice](ctx, cur)
	if err != nil {
		SetSpanError(span, err)
		return nil, handleError(err, "Invoice", "")
	}
	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	span := StartRepositorySpan(ctx, "invoice", "count", nil)
	defer FinishSpan(span)

	query, err := r.buildFilter(filter)
	if err != nil {
		return 0, err
	}

	n, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		SetSpanError(span, err)
		return 0, handleError(err, "Invoice", "")
	}
	return int(n), nil
}

func (r *invoiceRepository) ListAll(ctx context.Context, filter *types.InvoiceFilter) ([]*domainInvoice.Invoice, error) {
	if filter == nil {
		filter = types.NewNoLimitInvoiceFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewNoLimitQueryFilter()
	}
	filter.Limit = nil
	return r.List(ctx, filter)
}

func (r *invoiceRepository) DeleteAll(ctx context.Context) (int, error) {
	span := StartRepositorySpan(ctx, "invoice", "delete_all", nil)
	defer FinishSpan(span)

	res, err := r.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		SetSpanError(span, err)
		return 0, handleError(err, "Invoice", "")
	}
	return int(res.DeletedCount), nil
}

func (r *invoiceRepository) InsertMany(ctx context.Context, invoices []*domainInvoice.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}

	span := StartRepositorySpan(ctx, "invoice", "insert_many", map[string]interface{}{
		"count": len(invoices),
	})
	defer FinishSpan(span)

	if _, err := r.coll.InsertMany(ctx, toDocuments(invoices)); err != nil {
		SetSpanError(span, err)
		return handleError(err, "Invoice", "")
	}
	return nil
}

func invoiceFields(inv *domainInvoice.Invoice) bson.M {
	return bson.M{
		"invoice_number":   inv.InvoiceNumber,
		"customer_id":      inv.CustomerID,
		"customer_name":    inv.CustomerName,
		"status":           inv.Status,
		"date":             inv.Date,
		"due_date":         inv.DueDate,
		"total":            inv.Total,
		"balance":          inv.Balance,
		"currency_code":    inv.CurrencyCode,
		"reference_number": inv.ReferenceNo,
		"line_items":       inv.LineItems,
		"updated_at":       inv.UpdatedAt,
		"updated_by":       inv.UpdatedBy,
	}
}

func (r *invoiceRepository) UpsertMany(ctx context.Context, invoices []*domainInvoice.Invoice) (int, error) {
	if len(invoices) == 0 {
		return 0, nil
	}

	span := StartRepositorySpan(ctx, "invoice", "upsert_many", map[string]interface{}{
		"count": len(invoices),
	})
	defer FinishSpan(span)

	models := make([]mongo.WriteModel, 0, len(invoices))
	for _, inv := range invoices {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"invoice_id": inv.InvoiceID}).
			SetUpdate(bson.M{
				"$set": invoiceFields(inv),
				"$setOnInsert": bson.M{
					"created_at": inv.CreatedAt,
					"created_by": inv.CreatedBy,
				},
			}).
			SetUpsert(true))
	}

	res, err := r.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		SetSpanError(span, err)
		return 0, handleError(err, "Invoice", "")
	}
	return int(res.MatchedCount + res.UpsertedCount), nil
}

func (r *invoiceRepository) DeleteExcept(ctx context.Context, invoiceIDs []string) (int, error) {
	span := StartRepositorySpan(ctx, "invoice", "delete_except", map[string]interface{}{
		"keep": len(invoiceIDs),
	})
	defer FinishSpan(span)

	res, err := r.coll.DeleteMany(ctx, bson.M{"invoice_id": bson.M{"$nin": nonNil(invoiceIDs)}})
	if err != nil {
		SetSpanError(span, err)
		return 0, handleError(err, "Invoice", "")
	}
	return int(res.DeletedCount), nil
}
