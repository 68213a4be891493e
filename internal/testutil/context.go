package testutil

import (
	"context"

	"github.com/feesync/feesync/internal/types"
)

// SetupContext returns a request context acting as the given user, or as the system when empty
func SetupContext(userID string, role types.Role) context.Context {
	ctx := context.Background()
	if userID == "" {
		userID = types.DefaultUserID
	}
	ctx = types.SetUserID(ctx, userID)
	if role != "" {
		ctx = types.SetRole(ctx, role)
	}
	ctx = context.WithValue(ctx, types.CtxRequestID, types.GenerateUUID())
	return ctx
}
