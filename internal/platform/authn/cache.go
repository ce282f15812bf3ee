package authn

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// cacheTTL caps how long a session lookup is cached; it's well under
// RefreshTokenTTL so a cached hit never outlives the row it mirrors.
const cacheTTL = 5 * time.Minute

// CachedSessionStore wraps a SessionStore with a Redis read-through cache
// keyed by token hash, sparing the refresh endpoint a Postgres round trip
// on repeat rotation under load. Only FindByTokenHash populates the cache;
// Revoke and RevokeAll invalidate the affected entries, and Create passes
// straight through to inner without touching the cache.
type CachedSessionStore struct {
	inner SessionStore
	rdb   *redis.Client
}

// NewCachedSessionStore wraps inner with a Redis-backed cache.
func NewCachedSessionStore(inner SessionStore, rdb *redis.Client) *CachedSessionStore {
	return &CachedSessionStore{inner: inner, rdb: rdb}
}

func cacheKey(tokenHash string) string { return "session:" + tokenHash }

// sessionIndexKey maps a session ID back to the token hash it was last
// cached under, so Revoke (which only receives the ID) can still find the
// right cache entry to drop.
func sessionIndexKey(sessionID string) string { return "session:byid:" + sessionID }

// userSessionsKey is a set of every token hash cached for userID, so
// RevokeAll can invalidate all of a user's cached sessions without knowing
// their hashes up front.
func userSessionsKey(userID string) string { return "session:byuser:" + userID }

func (c *CachedSessionStore) Create(ctx context.Context, s *Session) error {
	return c.inner.Create(ctx, s)
}

func (c *CachedSessionStore) FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error) {
	if raw, err := c.rdb.Get(ctx, cacheKey(tokenHash)).Bytes(); err == nil {
		var s Session
		if jsonErr := json.Unmarshal(raw, &s); jsonErr == nil {
			return &s, nil
		}
	}

	session, err := c.inner.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(session); err == nil {
		c.rdb.Set(ctx, cacheKey(tokenHash), raw, cacheTTL)
		c.rdb.Set(ctx, sessionIndexKey(session.ID), tokenHash, cacheTTL)
		c.rdb.SAdd(ctx, userSessionsKey(session.UserID), tokenHash)
		c.rdb.Expire(ctx, userSessionsKey(session.UserID), cacheTTL)
	}
	return session, nil
}

// Revoke drops the cached session (keyed by token hash) before delegating,
// so a rotated/logged-out refresh token can't still authenticate against a
// stale cache hit for the rest of cacheTTL. sessionIndexKey resolves the
// hash from the ID, since that's all this method receives.
func (c *CachedSessionStore) Revoke(ctx context.Context, sessionID string) error {
	if tokenHash, err := c.rdb.Get(ctx, sessionIndexKey(sessionID)).Result(); err == nil {
		c.rdb.Del(ctx, cacheKey(tokenHash), sessionIndexKey(sessionID))
	}
	return c.inner.Revoke(ctx, sessionID)
}

// RevokeAll drops every cached session for userID before delegating,
// covering the "log out everywhere" path the same way Revoke covers a
// single session.
func (c *CachedSessionStore) RevokeAll(ctx context.Context, userID string) error {
	key := userSessionsKey(userID)
	if hashes, err := c.rdb.SMembers(ctx, key).Result(); err == nil {
		for _, h := range hashes {
			c.rdb.Del(ctx, cacheKey(h))
		}
		c.rdb.Del(ctx, key)
	}
	return c.inner.RevokeAll(ctx, userID)
}

func (c *CachedSessionStore) DeleteExpired(ctx context.Context) error {
	return c.inner.DeleteExpired(ctx)
}
