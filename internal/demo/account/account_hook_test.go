package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebase/corebase/internal/platform/sec"
	"github.com/corebase/corebase/pkg/corebase"
)

func TestHashPasswordHook_HashesAndClearsPlaintext(t *testing.T) {
	accounts := []Account{
		{Email: "a@example.com", Password: "supersecret"},
	}

	out, err := hashPasswordHook(context.Background(), corebase.UserContext{}, accounts)
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Empty(t, out[0].Password)
	assert.NotEmpty(t, out[0].PasswordHash)
	assert.True(t, sec.CheckPasswordHash("supersecret", out[0].PasswordHash))
}

func TestHashPasswordHook_LeavesEntryWithoutPasswordUntouched(t *testing.T) {
	accounts := []Account{
		{Email: "a@example.com", PasswordHash: "existing-hash"},
	}

	out, err := hashPasswordHook(context.Background(), corebase.UserContext{}, accounts)
	require.NoError(t, err)
	assert.Equal(t, "existing-hash", out[0].PasswordHash)
}
