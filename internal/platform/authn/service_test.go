package authn_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebase/corebase/internal/platform/authn"
	"github.com/corebase/corebase/internal/platform/sec"
)

// fakeSessionStore is an in-memory authn.SessionStore for exercising
// Service without a Postgres connection.
type fakeSessionStore struct {
	mu      sync.Mutex
	byHash  map[string]*authn.Session
	nextID  int
	revoked map[string]bool
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{byHash: map[string]*authn.Session{}, revoked: map[string]bool{}}
}

func (f *fakeSessionStore) Create(_ context.Context, s *authn.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	s.ID = string(rune('a' + f.nextID))
	s.CreatedAt = time.Now().UTC()
	f.byHash[s.TokenHash] = s
	return nil
}

func (f *fakeSessionStore) FindByTokenHash(_ context.Context, tokenHash string) (*authn.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byHash[tokenHash]
	if !ok || f.revoked[s.ID] || s.ExpiresAt.Before(time.Now()) {
		return nil, assert.AnError
	}
	return s, nil
}

func (f *fakeSessionStore) Revoke(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[sessionID] = true
	return nil
}

func (f *fakeSessionStore) RevokeAll(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.byHash {
		if s.UserID == userID {
			f.revoked[s.ID] = true
		}
	}
	return nil
}

func (f *fakeSessionStore) DeleteExpired(_ context.Context) error { return nil }

func newTestTokenService(t *testing.T) *sec.TokenService {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "priv.pem")
	pubPath := filepath.Join(dir, "pub.pem")

	privBytes := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	require.NoError(t, os.WriteFile(privPath, privBytes, 0o600))

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	require.NoError(t, os.WriteFile(pubPath, pubBytes, 0o600))

	svc, err := sec.NewTokenService(privPath, pubPath, "corebase-test")
	require.NoError(t, err)
	return svc
}

func TestService_IssueTokens_PersistsSessionAndReturnsPair(t *testing.T) {
	tokens := newTestTokenService(t)
	sessions := newFakeSessionStore()
	svc := authn.NewService(tokens, sessions)

	pair, err := svc.IssueTokens(context.Background(), "user-1", "org-1", sec.RoleMember)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	stored, err := sessions.FindByTokenHash(context.Background(), authn.HashRefreshToken(pair.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, "user-1", stored.UserID)
	assert.Equal(t, "org-1", stored.OrgID)
}

func TestService_Rotate_RevokesOldSessionAndIssuesNewPair(t *testing.T) {
	tokens := newTestTokenService(t)
	sessions := newFakeSessionStore()
	svc := authn.NewService(tokens, sessions)

	first, err := svc.IssueTokens(context.Background(), "user-1", "org-1", sec.RoleMember)
	require.NoError(t, err)

	second, err := svc.Rotate(context.Background(), first.RefreshToken, sec.RoleMember)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = svc.Rotate(context.Background(), first.RefreshToken, sec.RoleMember)
	assert.Error(t, err, "a rotated-away refresh token must not be reusable")
}

func TestService_Rotate_RejectsUnknownToken(t *testing.T) {
	tokens := newTestTokenService(t)
	sessions := newFakeSessionStore()
	svc := authn.NewService(tokens, sessions)

	_, err := svc.Rotate(context.Background(), "not-a-real-token", sec.RoleMember)
	assert.Error(t, err)
}

func TestService_Logout_RevokesAllSessionsForUser(t *testing.T) {
	tokens := newTestTokenService(t)
	sessions := newFakeSessionStore()
	svc := authn.NewService(tokens, sessions)

	pair, err := svc.IssueTokens(context.Background(), "user-1", "org-1", sec.RoleMember)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), "user-1"))

	_, err = sessions.FindByTokenHash(context.Background(), authn.HashRefreshToken(pair.RefreshToken))
	assert.Error(t, err)
}
