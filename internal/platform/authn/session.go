// Package authn is the Authenticator collaborator backing corebase: JWT
// access tokens (internal/platform/sec.TokenService) plus a refresh-token
// session store against the refresh_tokens table the synthetic migration
// bootstraps. Token issuance/rotation lives here, outside pkg/corebase,
// which only defines the Authenticator interface boundary.
package authn

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corebase/corebase/internal/platform/dberr"
)

// Session is one refresh-token row.
type Session struct {
	ID        string
	UserID    string
	OrgID     string
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// SessionStore is the refresh-token persistence boundary. Implementations
// back the Authenticator's token-rotation flow.
type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	Revoke(ctx context.Context, sessionID string) error
	RevokeAll(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) error
}

// PostgresSessionStore implements SessionStore against refresh_tokens.
type PostgresSessionStore struct {
	pool *pgxpool.Pool
}

// NewPostgresSessionStore builds a PostgresSessionStore.
func NewPostgresSessionStore(pool *pgxpool.Pool) *PostgresSessionStore {
	return &PostgresSessionStore{pool: pool}
}

func (s *PostgresSessionStore) Create(ctx context.Context, session *Session) error {
	query := `
		INSERT INTO refresh_tokens (org_id, user_id, token_hash, expires_at)
		VALUES (NULLIF($1, '')::bigint, $2, $3, $4)
		RETURNING id, created`
	return s.pool.QueryRow(ctx, query, session.OrgID, session.UserID, session.TokenHash, session.ExpiresAt).
		Scan(&session.ID, &session.CreatedAt)
}

func (s *PostgresSessionStore) FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error) {
	query := `
		SELECT id, user_id, COALESCE(org_id::text, ''), token_hash, expires_at, revoked_at, created
		FROM refresh_tokens
		WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > NOW()`
	row := s.pool.QueryRow(ctx, query, tokenHash)
	session := &Session{}
	err := row.Scan(&session.ID, &session.UserID, &session.OrgID, &session.TokenHash,
		&session.ExpiresAt, &session.RevokedAt, &session.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, dberr.Wrap(pgx.ErrNoRows, "find_session")
		}
		return nil, dberr.Wrap(err, "find_session")
	}
	return session, nil
}

func (s *PostgresSessionStore) Revoke(ctx context.Context, sessionID string) error {
	_, err := s.pool.Exec(ctx, `UPDATE refresh_tokens SET revoked_at = NOW() WHERE id = $1`, sessionID)
	if err != nil {
		return dberr.Wrap(err, "revoke_session")
	}
	return nil
}

func (s *PostgresSessionStore) RevokeAll(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, `UPDATE refresh_tokens SET revoked_at = NOW() WHERE user_id = $1 AND revoked_at IS NULL`, userID)
	if err != nil {
		return dberr.Wrap(err, "revoke_all_sessions")
	}
	return nil
}

func (s *PostgresSessionStore) DeleteExpired(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= NOW()`)
	if err != nil {
		return dberr.Wrap(err, "delete_expired_sessions")
	}
	return nil
}
