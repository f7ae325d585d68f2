package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims identifies a kitchen station session. Destino scopes the capability.
type Claims struct {
	Destino string `json:"destino"`
	jwt.RegisteredClaims
}

type TokenValidator interface {
	Validate(token string) (*Claims, error)
}

// StationTokens issues and validates HS256 capability tokens handed out by the
// access gate after a successful PIN exchange.
type StationTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewStationTokens(secret string, ttl time.Duration) *StationTokens {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &StationTokens{secret: []byte(strings.TrimSpace(secret)), ttl: ttl, now: time.Now}
}

// Enabled reports whether a signing secret was configured.
func (s *StationTokens) Enabled() bool {
	return s != nil && len(s.secret) > 0
}

func (s *StationTokens) Issue(destino string) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("%w: signing secret not configured", ErrInvalidToken)
	}
	now := s.now()
	claims := Claims{
		Destino: strings.TrimSpace(destino),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "station:" + strings.TrimSpace(destino),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *StationTokens) Validate(token string) (*Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}
	if !s.Enabled() {
		return nil, fmt.Errorf("%w: signing secret not configured", ErrInvalidToken)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithLeeway(5*time.Second), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Destino == "" {
		return nil, fmt.Errorf("%w: missing destino", ErrInvalidToken)
	}
	return claims, nil
}

// APIKeyMatches compares the static kitchen credential in constant time.
func APIKeyMatches(expected, provided string) bool {
	expected = strings.TrimSpace(expected)
	provided = strings.TrimSpace(provided)
	if expected == "" || provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}

var _ TokenValidator = (*StationTokens)(nil)
