package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mercantile-app/mercantile-backend/pkg/config"
	redisclient "github.com/mercantile-app/mercantile-backend/pkg/redis"
	redislib "github.com/redis/go-redis/v9"
)

type blobStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type cartKeyer interface {
	CartKey(sessionID string) string
}

// SessionStore persists cart blobs in Redis keyed by shopper session.
type SessionStore struct {
	store blobStore
	keyer cartKeyer
	ttl   time.Duration
}

// NewSessionStore builds a Redis-backed cart store.
func NewSessionStore(client *redisclient.Client, cfg config.CartConfig) (*SessionStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("cart session ttl must be positive")
	}
	return &SessionStore{
		store: client,
		keyer: client,
		ttl:   cfg.SessionTTL,
	}, nil
}

// Load reconstructs the cart for the session. A missing blob yields an empty
// cart, not an error.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("session id is required")
	}

	blob, err := s.store.Get(ctx, s.keyer.CartKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return New(nil), nil
		}
		return nil, fmt.Errorf("loading cart blob: %w", err)
	}
	return FromSerialized([]byte(blob))
}

// Save writes the cart blob back for the session, refreshing its TTL. An
// empty cart deletes the blob instead of storing an empty mapping.
func (s *SessionStore) Save(ctx context.Context, sessionID string, c *Cart) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	if c == nil || c.IsEmpty() {
		return s.Clear(ctx, sessionID)
	}

	blob, err := c.Serialize()
	if err != nil {
		return fmt.Errorf("serializing cart: %w", err)
	}
	if err := s.store.Set(ctx, s.keyer.CartKey(sessionID), string(blob), s.ttl); err != nil {
		return fmt.Errorf("storing cart blob: %w", err)
	}
	return nil
}

// Clear drops the session's cart blob.
func (s *SessionStore) Clear(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return s.store.Del(ctx, s.keyer.CartKey(sessionID))
}
