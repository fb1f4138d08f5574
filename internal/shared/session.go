package shared

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionManager stores bearer-token sessions in Redis. A session resolves to
// the Identity the posting layer depends on; nothing else is kept server-side.
type SessionManager struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, prefix string, ttl time.Duration) *SessionManager {
	if prefix == "" {
		prefix = "session"
	}
	return &SessionManager{client: client, prefix: prefix, ttl: ttl}
}

// Issue creates a session for the identity and returns the bearer token.
func (sm *SessionManager) Issue(ctx context.Context, id Identity) (string, error) {
	token := uuid.NewString()
	payload, err := json.Marshal(id)
	if err != nil {
		return "", err
	}
	if err := sm.client.Set(ctx, sm.key(token), payload, sm.ttl).Err(); err != nil {
		return "", fmt.Errorf("shared: store session: %w", err)
	}
	return token, nil
}

// Resolve returns the identity for a token, refreshing its TTL.
func (sm *SessionManager) Resolve(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrUnauthorized
	}
	payload, err := sm.client.Get(ctx, sm.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Identity{}, ErrUnauthorized
		}
		return Identity{}, fmt.Errorf("shared: load session: %w", err)
	}
	var id Identity
	if err := json.Unmarshal(payload, &id); err != nil {
		return Identity{}, ErrUnauthorized
	}
	_ = sm.client.Expire(ctx, sm.key(token), sm.ttl).Err()
	return id, nil
}

// Revoke deletes the session for a token.
func (sm *SessionManager) Revoke(ctx context.Context, token string) error {
	return sm.client.Del(ctx, sm.key(token)).Err()
}

// TokenFromRequest extracts the bearer token from the Authorization header.
func TokenFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const scheme = "Bearer "
	if !strings.HasPrefix(header, scheme) {
		return ""
	}
	return strings.TrimSpace(header[len(scheme):])
}

func (sm *SessionManager) key(token string) string {
	return sm.prefix + ":" + token
}
