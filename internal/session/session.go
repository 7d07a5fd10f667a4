// package session keeps logged-in browser sessions in memory or in Redis.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/desertthunder/riff/internal/claims"
	"github.com/desertthunder/riff/internal/shared"
)

// Session is an authenticated browser session. It carries the claim set the
// identity provider issued at login.
type Session struct {
	ID        string        `json:"id"`
	Subject   string        `json:"subject"`
	Claims    claims.Claims `json:"claims"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// New creates a session for c that lasts ttl.
func New(c claims.Claims, ttl time.Duration) (Session, error) {
	id, err := GenerateID()
	if err != nil {
		return Session{}, err
	}

	subject, _ := c.String(claims.Subject)
	now := time.Now().UTC()

	return Session{
		ID:        id,
		Subject:   subject,
		Claims:    c,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// Expired reports whether the session has passed its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s Session) validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: session id is required", shared.ErrInvalidInput)
	}
	if time.Until(s.ExpiresAt) <= 0 {
		return fmt.Errorf("%w: session expiry must be in the future", shared.ErrInvalidInput)
	}
	return nil
}

// Store defines how sessions are stored and retrieved.
//
// Get fails with [shared.ErrNotFound] for unknown or expired sessions.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// GenerateID returns a random session identifier with 256 bits of entropy.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: failed to generate id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewStore builds the backend selected by cfg. The returned close function
// releases the backend.
func NewStore(ctx context.Context, cfg *shared.Config) (Store, func() error, error) {
	switch cfg.Session.Backend {
	case "", "memory":
		store := NewMemoryStore(time.Minute)
		return store, store.Close, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		return NewRedisStore(client), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown session backend %q", shared.ErrInvalidConfig, cfg.Session.Backend)
	}
}
