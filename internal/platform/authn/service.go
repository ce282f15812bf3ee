package authn

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/corebase/corebase/internal/platform/apperr"
	"github.com/corebase/corebase/internal/platform/sec"
)

const (
	// AccessTokenTTL is kept short-lived; RefreshTokenTTL long-lived, so a
	// stolen access token has a small blast radius while sessions still
	// survive across a day of normal use.
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 30 * 24 * time.Hour

	refreshTokenBytes = 32
)

// TokenPair is one access/refresh token issuance result.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service issues and rotates token pairs, backing a deployment's login/
// refresh HTTP endpoints. Token issuance itself is a concrete
// implementation detail outside corebase's own Authenticator interface
// boundary.
type Service struct {
	tokens   *sec.TokenService
	sessions SessionStore
}

// NewService builds a Service.
func NewService(tokens *sec.TokenService, sessions SessionStore) *Service {
	return &Service{tokens: tokens, sessions: sessions}
}

// IssueTokens mints a fresh access/refresh pair for userID, optionally
// scoped to orgID, and persists the refresh token's hash.
func (s *Service) IssueTokens(ctx context.Context, userID, orgID string, role sec.UserRole) (TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(userID, userID, string(role), orgID, AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := randomToken(refreshTokenBytes)
	if err != nil {
		return TokenPair{}, err
	}

	session := &Session{
		UserID:    userID,
		OrgID:     orgID,
		TokenHash: HashRefreshToken(refresh),
		ExpiresAt: time.Now().UTC().Add(RefreshTokenTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Rotate exchanges a valid, unrevoked refresh token for a new pair,
// revoking the old session (rotate-on-use, closing the replay window a
// stolen refresh token would otherwise have).
func (s *Service) Rotate(ctx context.Context, refreshToken string, role sec.UserRole) (TokenPair, error) {
	session, err := s.sessions.FindByTokenHash(ctx, HashRefreshToken(refreshToken))
	if err != nil {
		return TokenPair{}, apperr.Unauthorized("invalid or expired refresh token")
	}
	if err := s.sessions.Revoke(ctx, session.ID); err != nil {
		return TokenPair{}, err
	}
	return s.IssueTokens(ctx, session.UserID, session.OrgID, role)
}

// Logout revokes every active session for userID.
func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.sessions.RevokeAll(ctx, userID)
}

func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
