package mongo

import (
	"context"
	"testing"
	"time"

	domainCustomer "github.com/feesync/feesync/internal/domain/customer"
	domainPayment "github.com/feesync/feesync/internal/domain/payment"
	domainToken "github.com/feesync/feesync/internal/domain/token"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/logger"
	"github.com/feesync/feesync/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestCustomerRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	log := logger.NewNopLogger()

	mt.Run("get decodes the document", func(mt *mtest.T) {
		repo := NewCustomerRepository(mt.DB, log)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "feesync.customers", mtest.FirstBatch, bson.D{
			{Key: "contact_id", Value: "C1"},
			{Key: "customer_name", Value: "Asha"},
			{Key: "email", Value: "asha@example.com"},
			{Key: "source", Value: "zoho"},
		}))

		c, err := repo.Get(ctx, "C1")
		require.NoError(mt, err)
		assert.Equal(mt, "C1", c.ContactID)
		assert.Equal(mt, "Asha", c.DisplayName())
		assert.Equal(mt, types.SourceZoho, c.Source)
		assert.Nil(mt, c.Credentials)
	})

	mt.Run("get maps missing documents to not found", func(mt *mtest.T) {
		repo := NewCustomerRepository(mt.DB, log)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "feesync.customers", mtest.FirstBatch))

		_, err := repo.Get(ctx, "missing")
		assert.True(mt, ierr.IsNotFound(err))
	})

	mt.Run("create maps duplicate keys to already exists", func(mt *mtest.T) {
		repo := NewCustomerRepository(mt.DB, log)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		err := repo.Create(ctx, &domainCustomer.Customer{ContactID: "C1"})
		assert.True(mt, ierr.IsAlreadyExists(err))
	})

	mt.Run("list returns every document of the batch", func(mt *mtest.T) {
		repo := NewCustomerRepository(mt.DB, log)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "feesync.customers", mtest.FirstBatch,
			bson.D{{Key: "contact_id", Value: "C1"}},
			bson.D{{Key: "contact_id", Value: "C2"}},
		))

		items, err := repo.List(ctx, types.NewCustomerFilter())
		require.NoError(mt, err)
		assert.Len(mt, items, 2)
	})

	mt.Run("count reads the aggregate result", func(mt *mtest.T) {
		repo := NewCustomerRepository(mt.DB, log)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "feesync.customers", mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(7)}},
		))

		n, err := repo.Count(ctx, &types.CustomerFilter{Search: "asha"})
		require.NoError(mt, err)
		assert.Equal(mt, 7, n)
	})

	mt.Run("delete of a missing customer is not found", func(mt *mtest.T) {
		repo := NewCustomerRepository(mt.DB, log)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}})

		err := repo.Delete(ctx, "missing")
		assert.True(mt, ierr.IsNotFound(err))
	})

	mt.Run("empty insert and upsert skip the round trip", func(mt *mtest.T) {
		repo := NewCustomerRepository(mt.DB, log)

		require.NoError(mt, repo.InsertMany(ctx, nil))
		n, err := repo.UpsertMany(ctx, nil)
		require.NoError(mt, err)
		assert.Zero(mt, n)
	})

	mt.Run("upsert reports matched documents", func(mt *mtest.T) {
		repo := NewCustomerRepository(mt.DB, log)
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "n", Value: 2},
			{Key: "nModified", Value: 2},
		})

		n, err := repo.UpsertMany(ctx, []*domainCustomer.Customer{
			{ContactID: "C1"},
			{ContactID: "C2"},
		})
		require.NoError(mt, err)
		assert.Equal(mt, 2, n)
	})

	mt.Run("delete except reports deleted documents", func(mt *mtest.T) {
		repo := NewCustomerRepository(mt.DB, log)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 3}})

		n, err := repo.DeleteExcept(ctx, nil)
		require.NoError(mt, err)
		assert.Equal(mt, 3, n)
	})
}

func TestPaymentRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	log := logger.NewNopLogger()

	mt.Run("list rejects a malformed month before querying", func(mt *mtest.T) {
		repo := NewPaymentRepository(mt.DB, log)

		_, err := repo.List(ctx, &types.PaymentFilter{
			QueryFilter: types.NewDefaultQueryFilter(),
			Month:       "May 2024",
		})
		assert.True(mt, ierr.IsValidation(err))
	})

	mt.Run("update of a missing payment is not found", func(mt *mtest.T) {
		repo := NewPaymentRepository(mt.DB, log)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}})

		err := repo.Update(ctx, &domainPayment.Payment{PaymentID: "P404"})
		assert.True(mt, ierr.IsNotFound(err))
	})

	mt.Run("get decodes amount and date", func(mt *mtest.T) {
		repo := NewPaymentRepository(mt.DB, log)
		paid := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "feesync.payments", mtest.FirstBatch, bson.D{
			{Key: "payment_id", Value: "P1"},
			{Key: "customer_id", Value: "C1"},
			{Key: "amount", Value: 400.5},
			{Key: "date", Value: paid},
			{Key: "source", Value: "manual"},
		}))

		p, err := repo.Get(ctx, "P1")
		require.NoError(mt, err)
		assert.Equal(mt, 400.5, p.Amount)
		assert.True(mt, paid.Equal(p.Date))
		assert.Equal(mt, types.SourceManual, p.Source)
	})
}

func TestTokenRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	log := logger.NewNopLogger()

	mt.Run("latest token absent is not found", func(mt *mtest.T) {
		repo := NewTokenRepository(mt.DB, log)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "feesync.tokens", mtest.FirstBatch))

		_, err := repo.GetLatest(ctx)
		assert.True(mt, ierr.IsNotFound(err))
	})

	mt.Run("save upserts", func(mt *mtest.T) {
		repo := NewTokenRepository(mt.DB, log)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}, {Key: "nModified", Value: 1}})

		err := repo.Save(ctx, &domainToken.Token{AccessToken: "a", RefreshToken: "r"})
		require.NoError(mt, err)
	})
}
