package auth

import (
	"context"
	"time"

	"github.com/feesync/feesync/internal/config"
	"github.com/feesync/feesync/internal/types"
)

// Claims are the identity carried by a session token
type Claims struct {
	UserID    string
	Role      types.Role
	ExpiresAt time.Time
}

// Provider issues and checks session tokens and login secrets
type Provider interface {
	HashPassword(password string) (string, error)
	ComparePassword(hash, password string) error

	GenerateToken(userID string, role types.Role) (string, time.Time, error)
	ValidateToken(ctx context.Context, token string) (*Claims, error)

	// GenerateOTP returns a 6 digit code and its bcrypt hash
	GenerateOTP() (code string, hash string, err error)
	// GenerateResetToken returns a random token and the digest to store
	GenerateResetToken() (token string, digest string, err error)
	HashResetToken(token string) string
}

func NewProvider(cfg *config.Configuration) Provider {
	return NewJWTAuth(cfg)
}
