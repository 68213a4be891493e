package token

import (
	"time"
)

// Token is the single persisted provider OAuth grant
type Token struct {
	AccessToken    string    `bson:"access_token" json:"-"`
	RefreshToken   string    `bson:"refresh_token" json:"-"`
	OrganizationID string    `bson:"organization_id" json:"organization_id"`
	TokenExpiry    time.Time `bson:"token_expiry" json:"token_expiry"`
	LastRefreshed  time.Time `bson:"last_refreshed" json:"last_refreshed"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}

// ExpiresWithin reports whether the access token expires before now+lead
func (t *Token) ExpiresWithin(now time.Time, lead time.Duration) bool {
	return !now.Add(lead).Before(t.TokenExpiry)
}
