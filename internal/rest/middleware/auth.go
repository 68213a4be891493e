package middleware

import (
	"context"
	"strings"

	"github.com/feesync/feesync/internal/auth"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/logger"
	"github.com/feesync/feesync/internal/types"
	"github.com/gin-gonic/gin"
)

// AuthenticateMiddleware validates the bearer token and, when roles are given,
// requires the token's role to be one of them. The user id, role and raw token
// are placed in the request context for the services.
func AuthenticateMiddleware(provider auth.Provider, logger *logger.Logger, roles ...types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(types.HeaderAuthorization)
		if authHeader == "" {
			abort(c, ierr.NewError("missing authorization header").
				WithHint("Unauthorized").
				Mark(ierr.ErrUnauthorized))
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			abort(c, ierr.NewError("malformed authorization header").
				WithHint("Invalid authorization header format").
				Mark(ierr.ErrUnauthorized))
			return
		}

		claims, err := provider.ValidateToken(c.Request.Context(), strings.TrimSpace(tokenString))
		if err != nil {
			logger.Debugw("failed to validate token", "error", err)
			abort(c, err)
			return
		}

		if len(roles) > 0 && !hasRole(roles, claims.Role) {
			abort(c, ierr.NewErrorf("role %s is not allowed", claims.Role).
				WithHint("You do not have access to this resource").
				Mark(ierr.ErrPermissionDenied))
			return
		}

		ctx := c.Request.Context()
		ctx = context.WithValue(ctx, types.CtxUserID, claims.UserID)
		ctx = context.WithValue(ctx, types.CtxRole, claims.Role)
		ctx = context.WithValue(ctx, types.CtxJWT, tokenString)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func hasRole(roles []types.Role, role types.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// abort hands err to ErrorHandler and stops the chain
func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
