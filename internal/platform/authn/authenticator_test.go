package authn_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebase/corebase/internal/platform/authn"
	"github.com/corebase/corebase/pkg/corebase"
)

func TestAuthenticator_Authenticate_ValidTokenWithOrg(t *testing.T) {
	tokens := newTestTokenService(t)
	a := authn.NewAuthenticator(tokens, corebase.RelationalIdSchema{})

	token, err := tokens.GenerateAccessToken("5", "alice", "member", "9", time.Minute)
	require.NoError(t, err)

	uc, err := a.Authenticate(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, "5", uc.User.String())
	assert.Equal(t, "9", uc.OrgId.String())
	assert.False(t, uc.IsSystem())
}

func TestAuthenticator_Authenticate_ValidTokenWithoutOrg(t *testing.T) {
	tokens := newTestTokenService(t)
	a := authn.NewAuthenticator(tokens, corebase.RelationalIdSchema{})

	token, err := tokens.GenerateAccessToken("5", "alice", "member", "", time.Minute)
	require.NoError(t, err)

	uc, err := a.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "5", uc.User.String())
	assert.True(t, uc.OrgId.IsZero())
}

func TestAuthenticator_Authenticate_RejectsEmptyCredential(t *testing.T) {
	tokens := newTestTokenService(t)
	a := authn.NewAuthenticator(tokens, corebase.RelationalIdSchema{})

	_, err := a.Authenticate(context.Background(), "")
	assert.Error(t, err)
}

func TestAuthenticator_Authenticate_RejectsMalformedToken(t *testing.T) {
	tokens := newTestTokenService(t)
	a := authn.NewAuthenticator(tokens, corebase.RelationalIdSchema{})

	_, err := a.Authenticate(context.Background(), "Bearer not-a-jwt")
	assert.Error(t, err)
}

func TestAuthenticator_Authenticate_RejectsTokenWithBadSubject(t *testing.T) {
	tokens := newTestTokenService(t)
	a := authn.NewAuthenticator(tokens, corebase.RelationalIdSchema{})

	token, err := tokens.GenerateAccessToken("not-an-id", "alice", "member", "", time.Minute)
	require.NoError(t, err)

	_, err = a.Authenticate(context.Background(), "Bearer "+token)
	assert.Error(t, err)
}

func TestHashRefreshToken_DeterministicAndDistinct(t *testing.T) {
	a := authn.HashRefreshToken("token-a")
	b := authn.HashRefreshToken("token-a")
	c := authn.HashRefreshToken("token-b")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestSecureCompare(t *testing.T) {
	assert.True(t, authn.SecureCompare("x", "x"))
	assert.False(t, authn.SecureCompare("x", "y"))
}
