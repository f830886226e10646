// Package session issues and verifies signed browse-session tokens. The
// token subject is the opaque session identifier that owns seat holds; no
// user identity is attached here.
package session

import (
	"errors"
	"time"

	"seatwise/internal/pkg/clock"
	"seatwise/internal/pkg/errs"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errs.New("invalid session token")
	ErrExpiredToken = errs.New("expired session token")
)

type Manager struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewManager(secret string, ttl time.Duration, clk clock.Clock) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, clock: clk}
}

// TTL is the configured token lifetime. The HTTP layer uses it to keep the
// cookie age in step with token validity.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a fresh session identifier wrapped in a signed token.
func (m *Manager) Issue() (sessionID string, token string, err error) {
	sessionID = uuid.NewString()
	token, err = m.Sign(sessionID)
	return sessionID, token, err
}

func (m *Manager) Sign(sessionID string) (string, error) {
	now := m.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(m.secret)
	if err != nil {
		return "", errs.Wrap(err, "failed to sign session token")
	}
	return signed, nil
}

// Verify returns the session identifier carried by a signed token.
func (m *Manager) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.clock.Now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", errs.Mark(err, ErrExpiredToken)
		}
		return "", errs.Mark(err, ErrInvalidToken)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
