package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/feesync/feesync/internal/auth"
	"github.com/feesync/feesync/internal/config"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/logger"
	"github.com/feesync/feesync/internal/sentry"
	"github.com/feesync/feesync/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

type MiddlewareSuite struct {
	suite.Suite
	provider auth.Provider
	router   *gin.Engine
}

func TestMiddleware(t *testing.T) {
	suite.Run(t, new(MiddlewareSuite))
}

func (s *MiddlewareSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	cfg := config.GetDefaultConfig()
	cfg.Auth.Secret = "middleware-test-secret"
	log := logger.NewNopLogger()
	s.provider = auth.NewProvider(cfg)

	s.router = gin.New()
	s.router.Use(RequestIDMiddleware, ErrorHandler(log, sentry.NewSentryService(cfg, log)))

	whoami := func(c *gin.Context) {
		ctx := c.Request.Context()
		c.JSON(http.StatusOK, gin.H{
			"user_id":    types.GetUserID(ctx),
			"role":       types.GetRole(ctx),
			"request_id": types.GetRequestID(ctx),
		})
	}
	s.router.GET("/admin", AuthenticateMiddleware(s.provider, log, types.RoleAdmin), whoami)
	s.router.GET("/any", AuthenticateMiddleware(s.provider, log), whoami)
	s.router.GET("/fail", func(c *gin.Context) {
		_ = c.Error(ierr.NewError("customer C9 not found").
			WithHint("Customer not found").
			WithReportableDetails(map[string]any{"customer_id": "C9"}).
			Mark(ierr.ErrNotFound))
	})
	s.router.GET("/boom", func(c *gin.Context) {
		_ = c.Error(ierr.NewError("driver exploded").Mark(ierr.ErrDatabase))
	})
}

func (s *MiddlewareSuite) do(path, token string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(types.HeaderAuthorization, "Bearer "+token)
	}
	if len(header) == 2 {
		req.Header.Set(header[0], header[1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *MiddlewareSuite) decodeError(w *httptest.ResponseRecorder) ierr.ErrorResponse {
	var resp ierr.ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (s *MiddlewareSuite) token(userID string, role types.Role) string {
	token, _, err := s.provider.GenerateToken(userID, role)
	s.Require().NoError(err)
	return token
}

func (s *MiddlewareSuite) TestRequestID() {
	w := s.do("/fail", "", types.HeaderRequestID, "req-123")
	s.Equal("req-123", w.Header().Get(types.HeaderRequestID))

	w = s.do("/fail", "")
	s.NotEmpty(w.Header().Get(types.HeaderRequestID))
}

func (s *MiddlewareSuite) TestMissingToken() {
	w := s.do("/admin", "")
	s.Equal(http.StatusUnauthorized, w.Code)

	resp := s.decodeError(w)
	s.False(resp.Success)
	s.Equal("Unauthorized", resp.Error.Display)
}

func (s *MiddlewareSuite) TestMalformedHeader() {
	w := s.do("/admin", "", types.HeaderAuthorization, "Token abc")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Invalid authorization header format", s.decodeError(w).Error.Display)
}

func (s *MiddlewareSuite) TestInvalidToken() {
	w := s.do("/admin", "not-a-jwt")
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *MiddlewareSuite) TestRoleEnforced() {
	w := s.do("/admin", s.token("C1", types.RoleStudent))
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("You do not have access to this resource", s.decodeError(w).Error.Display)

	w = s.do("/any", s.token("C1", types.RoleStudent))
	s.Equal(http.StatusOK, w.Code)
}

func (s *MiddlewareSuite) TestIdentityInContext() {
	w := s.do("/admin", s.token("usr_1", types.RoleAdmin), types.HeaderRequestID, "req-abc")
	s.Require().Equal(http.StatusOK, w.Code)

	var body map[string]string
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal("usr_1", body["user_id"])
	s.Equal(string(types.RoleAdmin), body["role"])
	s.Equal("req-abc", body["request_id"])
}

func (s *MiddlewareSuite) TestErrorRendering() {
	w := s.do("/fail", "")
	s.Equal(http.StatusNotFound, w.Code)

	resp := s.decodeError(w)
	s.Equal("Customer not found", resp.Error.Display)
	s.Equal("C9", resp.Error.Details["customer_id"])
}

func (s *MiddlewareSuite) TestServerErrorHidesInternals() {
	w := s.do("/boom", "")
	s.Equal(http.StatusInternalServerError, w.Code)

	resp := s.decodeError(w)
	s.Equal("An unexpected error occurred", resp.Error.Display)
	s.NotContains(w.Body.String(), "driver exploded")
}
