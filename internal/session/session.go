// Package session implements cookie-backed server-side sessions. A session is
// an opaque token mapped to a small payload; the mapping lives in durable
// storage so sessions survive process restarts, and entries expire after a
// fixed TTL.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTTL is how long a session stays valid after creation.
	DefaultTTL = 24 * time.Hour
	// CookieName is the HTTP cookie that carries the session token.
	CookieName = "session_id"
)

// Payload is the identity bound to a session token.
type Payload struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// Store persists session records. Get returns (nil, nil) for unknown or
// expired tokens; callers treat that as anonymous, not as an error.
type Store interface {
	Create(ctx context.Context, p Payload) (string, error)
	Get(ctx context.Context, token string) (*Payload, error)
	Delete(ctx context.Context, token string) error
}

// newToken returns a fresh opaque session identifier.
func newToken() string {
	return uuid.New().String()
}
