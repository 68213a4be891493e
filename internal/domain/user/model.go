package user

import (
	"context"
	"strings"
	"time"

	"github.com/feesync/feesync/internal/domain/credential"
	"github.com/feesync/feesync/internal/types"
)

// User is an admin account
type User struct {
	ID              string                  `bson:"id" json:"id"`
	Name            string                  `bson:"name" json:"name"`
	Email           string                  `bson:"email" json:"email"`
	Role            types.Role              `bson:"role" json:"role"`
	Credentials     *credential.Credentials `bson:"credentials,omitempty" json:"-"`
	LastLoginAt     *time.Time              `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	types.BaseModel `bson:",inline"`
}

func NewUser(ctx context.Context, name, email string) *User {
	return &User{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_USER),
		Name:        strings.TrimSpace(name),
		Email:       strings.ToLower(strings.TrimSpace(email)),
		Role:        types.RoleAdmin,
		Credentials: &credential.Credentials{},
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
}
