package customer

import (
	"context"

	"github.com/feesync/feesync/internal/domain/credential"
	"github.com/feesync/feesync/internal/types"
)

// Repository defines the interface for customer data access.
// All lookups use the contact id.
type Repository interface {
	Create(ctx context.Context, customer *Customer) error
	Get(ctx context.Context, contactID string) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
	GetByResetToken(ctx context.Context, tokenHash string) (*Customer, error)
	List(ctx context.Context, filter *types.CustomerFilter) ([]*Customer, error)
	Count(ctx context.Context, filter *types.CustomerFilter) (int, error)
	ListAll(ctx context.Context, filter *types.CustomerFilter) ([]*Customer, error)
	Update(ctx context.Context, customer *Customer) error
	UpdateCredentials(ctx context.Context, contactID string, creds *credential.Credentials) error
	Delete(ctx context.Context, contactID string) error

	// Mirror writes used by the sync
	DeleteAll(ctx context.Context) (int, error)
	InsertMany(ctx context.Context, customers []*Customer) error
	UpsertMany(ctx context.Context, customers []*Customer) (int, error)
	DeleteExcept(ctx context.Context, contactIDs []string) (int, error)
}
