package token

import (
	"context"
)

type Repository interface {
	// GetLatest returns the most recently updated token or a not found error
	GetLatest(ctx context.Context) (*Token, error)
	// Save overwrites the stored token, creating it when absent
	Save(ctx context.Context, token *Token) error
}
