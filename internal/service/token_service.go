package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nabil-s/appointly/internal/apperr"
	"github.com/nabil-s/appointly/internal/config"
	"github.com/nabil-s/appointly/internal/domain"
)

// ErrInvalidToken is the single client-visible failure for every token
// problem (bad signature, malformed, expired, wrong method) so callers get
// no oracle about why verification failed.
var ErrInvalidToken = apperr.Unauthenticated("Invalid token. Please log in again")

// Claims is the session token payload. The embedded token version binds the
// token to one logout generation of the account.
type Claims struct {
	Role         domain.Role `json:"role"`
	TokenVersion int64       `json:"tokenVersion"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed session tokens. The signing key
// lives in the process-wide config; rotating it invalidates every
// outstanding token, as there is no provision for honoring old keys.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL(),
	}
}

// Issue signs a token for the user embedding their current token version.
func (s *TokenService) Issue(user *domain.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)

	claims := &Claims{
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify checks signature and expiry and returns the decoded claims.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
