package services

import (
	"context"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"handyhub/config"
	handyhub_errors "handyhub/pkg/errors"
)

// AccessClaims is the access token issued by the marketplace auth service.
// Subject holds the numeric user id.
type AccessClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// AuthService verifies access tokens. It never issues tokens for clients;
// IssueAccessToken exists for local tooling.
type AuthService struct {
	jwtSecret []byte
	accessTTL time.Duration
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		jwtSecret: []byte(cfg.JWTSecret),
		accessTTL: 24 * time.Hour,
	}
}

// Enabled reports whether requests must carry a token.
func (s *AuthService) Enabled() bool {
	return len(s.jwtSecret) > 0
}

func (s *AuthService) ParseAccessToken(tokenString string) (int64, error) {
	if tokenString == "" || !s.Enabled() {
		return 0, handyhub_errors.ErrUnauthorized
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, handyhub_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, handyhub_errors.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid {
		return 0, handyhub_errors.ErrUnauthorized
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, handyhub_errors.ErrUnauthorized
	}
	return userID, nil
}

func (s *AuthService) IssueAccessToken(userID int64, role string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

type ctxKey string

var userIDKey ctxKey = "auth_user_id"

func WithUserContext(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user, if any.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

// ActingAs rejects requests where an authenticated caller acts for someone
// else. Anonymous contexts pass.
func ActingAs(ctx context.Context, userID int64) error {
	caller, ok := UserIDFromContext(ctx)
	if !ok || caller == userID {
		return nil
	}
	return handyhub_errors.ErrForbidden
}
