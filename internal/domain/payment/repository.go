package payment

import (
	"context"

	"github.com/feesync/feesync/internal/types"
)

type Repository interface {
	Create(ctx context.Context, payment *Payment) error
	Get(ctx context.Context, paymentID string) (*Payment, error)
	List(ctx context.Context, filter *types.PaymentFilter) ([]*Payment, error)
	Count(ctx context.Context, filter *types.PaymentFilter) (int, error)
	ListAll(ctx context.Context, filter *types.PaymentFilter) ([]*Payment, error)
	Update(ctx context.Context, payment *Payment) error
	Delete(ctx context.Context, paymentID string) error

	DeleteAll(ctx context.Context) (int, error)
	InsertMany(ctx context.Context, payments []*Payment) error
	UpsertMany(ctx context.Context, payments []*Payment) (int, error)
	DeleteExcept(ctx context.Context, paymentIDs []string) (int, error)
}
