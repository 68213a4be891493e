package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/feesync/feesync/internal/config"
	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/feesync/feesync/internal/types"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	otpDigits       = 6
	resetTokenBytes = 32
)

type jwtAuth struct {
	AuthConfig config.AuthConfig
	now        func() time.Time
}

func NewJWTAuth(cfg *config.Configuration) *jwtAuth {
	ac := cfg.Auth
	if ac.TokenTTL <= 0 {
		ac.TokenTTL = 7 * 24 * time.Hour
	}
	return &jwtAuth{
		AuthConfig: ac,
		now:        time.Now,
	}
}

func (a *jwtAuth) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ierr.NewError("password is required").
			WithHint("Password is required").
			Mark(ierr.ErrValidation)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to hash password").
			Mark(ierr.ErrSystem)
	}
	return string(hashed), nil
}

func (a *jwtAuth) ComparePassword(hash, password string) error {
	if hash == "" {
		return ierr.NewError("no password set").
			WithHint("Invalid email or password").
			Mark(ierr.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ierr.NewError("invalid password").
			WithHint("Invalid email or password").
			Mark(ierr.ErrUnauthorized)
	}
	return nil
}

func (a *jwtAuth) GenerateToken(userID string, role types.Role) (string, time.Time, error) {
	now := a.now()
	expiration := now.Add(a.AuthConfig.TokenTTL)

	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     expiration.Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(a.AuthConfig.Secret))
	if err != nil {
		return "", time.Time{}, ierr.WithError(err).
			WithHint("Failed to generate token").
			Mark(ierr.ErrSystem)
	}
	return signed, expiration, nil
}

func (a *jwtAuth) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ierr.NewError("unexpected signing method").
				WithHint(fmt.Sprintf("unexpected signing method: %v", token.Header["alg"])).
				Mark(ierr.ErrUnauthorized)
		}
		return []byte(a.AuthConfig.Secret), nil
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid or expired token").
			Mark(ierr.ErrUnauthorized)
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok || !parsedToken.Valid {
		return nil, ierr.NewError("invalid token claims").
			WithHint("Invalid token claims").
			Mark(ierr.ErrUnauthorized)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, ierr.NewError("token missing user ID").
			WithHint("Token missing user ID").
			Mark(ierr.ErrUnauthorized)
	}

	role, _ := claims["role"].(string)
	if role != string(types.RoleAdmin) && role != string(types.RoleStudent) {
		return nil, ierr.NewError("token missing role").
			WithHint("Token has no valid role").
			Mark(ierr.ErrUnauthorized)
	}

	result := &Claims{UserID: userID, Role: types.Role(role)}
	if exp, ok := claims["exp"].(float64); ok {
		result.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}
	return result, nil
}

func (a *jwtAuth) GenerateOTP() (string, string, error) {
	limit := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", "", ierr.WithError(err).
			WithHint("Failed to generate code").
			Mark(ierr.ErrSystem)
	}

	code := fmt.Sprintf("%0*d", otpDigits, n.Int64())
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", "", ierr.WithError(err).
			WithHint("Failed to generate code").
			Mark(ierr.ErrSystem)
	}
	return code, string(hashed), nil
}

func (a *jwtAuth) GenerateResetToken() (string, string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", ierr.WithError(err).
			WithHint("Failed to generate reset token").
			Mark(ierr.ErrSystem)
	}
	token := hex.EncodeToString(buf)
	return token, a.HashResetToken(token), nil
}

// HashResetToken digests a reset token for storage and lookup
func (a *jwtAuth) HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
