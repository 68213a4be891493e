package types

import (
	"context"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID ContextKey = "ctx_request_id"
	CtxUserID    ContextKey = "ctx_user_id"
	CtxRole      ContextKey = "ctx_role"
	CtxJWT       ContextKey = "ctx_jwt"

	// DefaultUserID is recorded as the actor for work started by the process itself
	// (scheduled syncs, token refreshes).
	DefaultUserID = "system"
)

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(CtxUserID).(string); ok {
		return userID
	}
	return ""
}

func GetRole(ctx context.Context) Role {
	if role, ok := ctx.Value(CtxRole).(Role); ok {
		return role
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

func GetJWT(ctx context.Context) string {
	if jwt, ok := ctx.Value(CtxJWT).(string); ok {
		return jwt
	}
	return ""
}

// SetUserID sets the user ID in the context
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}

// SetRole sets the authenticated principal's role in the context
func SetRole(ctx context.Context, role Role) context.Context {
	return context.WithValue(ctx, CtxRole, role)
}

// GetActor returns the user recorded against writes and notifications,
// falling back to DefaultUserID for background work.
func GetActor(ctx context.Context) string {
	if userID := GetUserID(ctx); userID != "" {
		return userID
	}
	return DefaultUserID
}
