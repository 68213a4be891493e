package user

import (
	"context"

	"github.com/feesync/feesync/internal/domain/credential"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByResetToken(ctx context.Context, tokenHash string) (*User, error)
	UpdateCredentials(ctx context.Context, id string, creds *credential.Credentials) error
	TouchLogin(ctx context.Context, id string) error
}
