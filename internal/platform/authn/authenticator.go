package authn

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/corebase/corebase/internal/platform/apperr"
	"github.com/corebase/corebase/internal/platform/sec"
	"github.com/corebase/corebase/pkg/corebase"
)

// Authenticator implements corebase.Authenticator over JWT access tokens
// signed by sec.TokenService. It's the only place a bearer credential
// turns into a corebase.UserContext.
type Authenticator struct {
	Tokens   *sec.TokenService
	IdSchema corebase.IdSchema
}

// NewAuthenticator builds an Authenticator.
func NewAuthenticator(tokens *sec.TokenService, idSchema corebase.IdSchema) *Authenticator {
	return &Authenticator{Tokens: tokens, IdSchema: idSchema}
}

// Authenticate verifies credential as a signed access token and resolves
// its subject/org claims into a UserContext. It never returns a context
// with IsSystem true — that flag is only ever set by InitializeSystemUserContext.
func (a *Authenticator) Authenticate(ctx context.Context, credential string) (corebase.UserContext, error) {
	credential = strings.TrimPrefix(credential, "Bearer ")
	if credential == "" {
		return corebase.UserContext{}, apperr.Unauthorized("missing credential")
	}

	claims, err := a.Tokens.VerifyToken(credential)
	if err != nil {
		return corebase.UserContext{}, apperr.Unauthorized("invalid credential")
	}

	userId, err := a.IdSchema.Parse(claims.UserID)
	if err != nil {
		return corebase.UserContext{}, apperr.Unauthorized("invalid credential")
	}

	uc := corebase.NewUserContext(userId)
	if claims.OrgID != "" {
		orgId, err := a.IdSchema.Parse(claims.OrgID)
		if err != nil {
			return corebase.UserContext{}, apperr.Unauthorized("invalid credential")
		}
		uc = uc.WithOrg(orgId)
	}
	return uc, nil
}

// HashRefreshToken renders the opaque refresh token into its storage form.
// The session store keeps only the hash; the plaintext token is never
// persisted.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// SecureCompare is a constant-time comparison for refresh-token hashes.
func SecureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
