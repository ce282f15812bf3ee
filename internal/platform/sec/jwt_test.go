package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebase/corebase/internal/platform/sec"
)

// newTestTokenService writes a freshly generated RSA keypair to PEM files
// under t.TempDir() and builds a TokenService against them.
func newTestTokenService(t *testing.T) *sec.TokenService {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "priv.pem")
	pubPath := filepath.Join(dir, "pub.pem")

	privBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	require.NoError(t, os.WriteFile(privPath, privBytes, 0o600))

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	require.NoError(t, os.WriteFile(pubPath, pubBytes, 0o600))

	svc, err := sec.NewTokenService(privPath, pubPath, "corebase-test")
	require.NoError(t, err)
	return svc
}

func TestTokenService_GenerateAndVerify_RoundTrip(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.GenerateAccessToken("42", "alice", "member", "7", time.Minute)
	require.NoError(t, err)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "member", claims.Role)
	assert.Equal(t, "7", claims.OrgID)
	assert.False(t, claims.IsSystem())
}

func TestTokenService_VerifyToken_RejectsExpired(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.GenerateAccessToken("42", "alice", "member", "", -time.Minute)
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.Error(t, err)
}

func TestTokenService_VerifyToken_RejectsTamperedSignature(t *testing.T) {
	svc := newTestTokenService(t)
	other := newTestTokenService(t)

	token, err := svc.GenerateAccessToken("42", "alice", "member", "", time.Minute)
	require.NoError(t, err)

	_, err = other.VerifyToken(token)
	assert.Error(t, err)
}

func TestAuthClaims_IsSystem(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.GenerateAccessToken("1", "root", string(sec.RoleSystem), "", time.Minute)
	require.NoError(t, err)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.True(t, claims.IsSystem())
}
