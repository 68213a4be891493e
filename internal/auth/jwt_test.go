package auth

import (
	"context"
	"testing"
	"time"

	"github.com/feesync/feesync/internal/config"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/types"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/suite"
)

type JWTAuthSuite struct {
	suite.Suite
	auth *jwtAuth
}

func TestJWTAuth(t *testing.T) {
	suite.Run(t, new(JWTAuthSuite))
}

func (s *JWTAuthSuite) SetupTest() {
	cfg := config.GetDefaultConfig()
	cfg.Auth.Secret = "test-secret"
	s.auth = NewJWTAuth(cfg)
}

func (s *JWTAuthSuite) TestTokenRoundTrip() {
	token, exp, err := s.auth.GenerateToken("user_1", types.RoleAdmin)
	s.Require().NoError(err)
	s.WithinDuration(time.Now().Add(7*24*time.Hour), exp, time.Minute)

	claims, err := s.auth.ValidateToken(context.Background(), token)
	s.Require().NoError(err)
	s.Equal("user_1", claims.UserID)
	s.Equal(types.RoleAdmin, claims.Role)
}

func (s *JWTAuthSuite) TestExpiredToken() {
	s.auth.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	token, _, err := s.auth.GenerateToken("user_1", types.RoleStudent)
	s.Require().NoError(err)

	_, err = s.auth.ValidateToken(context.Background(), token)
	s.True(ierr.IsUnauthorized(err))
}

func (s *JWTAuthSuite) TestForeignSecretRejected() {
	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user_1",
		"role":    "admin",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := other.SignedString([]byte("another-secret"))
	s.Require().NoError(err)

	_, err = s.auth.ValidateToken(context.Background(), signed)
	s.True(ierr.IsUnauthorized(err))
}

func (s *JWTAuthSuite) TestMissingRoleRejected() {
	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user_1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := other.SignedString([]byte("test-secret"))
	s.Require().NoError(err)

	_, err = s.auth.ValidateToken(context.Background(), signed)
	s.True(ierr.IsUnauthorized(err))
}

func (s *JWTAuthSuite) TestPasswords() {
	hash, err := s.auth.HashPassword("s3cret!")
	s.Require().NoError(err)
	s.NoError(s.auth.ComparePassword(hash, "s3cret!"))
	s.True(ierr.IsUnauthorized(s.auth.ComparePassword(hash, "wrong")))
	s.True(ierr.IsUnauthorized(s.auth.ComparePassword("", "s3cret!")))

	_, err = s.auth.HashPassword("")
	s.True(ierr.IsValidation(err))
}

func (s *JWTAuthSuite) TestOTP() {
	code, hash, err := s.auth.GenerateOTP()
	s.Require().NoError(err)
	s.Len(code, 6)
	s.NoError(s.auth.ComparePassword(hash, code))
}

func (s *JWTAuthSuite) TestResetToken() {
	token, digest, err := s.auth.GenerateResetToken()
	s.Require().NoError(err)
	s.Len(token, 64)
	s.Equal(digest, s.auth.HashResetToken(token))
	s.NotEqual(token, digest)
}
