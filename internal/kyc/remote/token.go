package remote

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenSource yields the bearer token sent to the authority.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed bearer token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

// ServiceClaims identifies the console when it calls the authority.
type ServiceClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// JWTSource mints short-lived HS256 service tokens and reuses one until it
// is close to expiry.
type JWTSource struct {
	signingKey []byte
	issuer     string
	audience   string
	ttl        time.Duration
	now        func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewJWTSource creates a token source signing with key.
func NewJWTSource(signingKey, issuer, audience string, ttl time.Duration) *JWTSource {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &JWTSource{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Token returns a cached token or mints a new one.
func (s *JWTSource) Token(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	// refresh once less than a fifth of the lifetime remains
	if s.token != "" && now.Before(s.expiresAt.Add(-s.ttl/5)) {
		return s.token, nil
	}

	expiresAt := now.Add(s.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, ServiceClaims{
		Scope: "kyc:review",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.issuer,
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	})
	signed, err := tok.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	s.token = signed
	s.expiresAt = expiresAt
	return signed, nil
}
