package feature

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebase/corebase/pkg/corebase"
)

func TestSlugifyHook_NormalizesHumanReadableSlug(t *testing.T) {
	features := []Feature{{Slug: "Dark Mode", Description: "Dark theme"}}

	out, err := slugifyHook(context.Background(), corebase.UserContext{}, features)
	require.NoError(t, err)
	assert.Equal(t, "dark-mode", out[0].Slug)
}

func TestSlugifyHook_AlreadyNormalizedSlugUnchanged(t *testing.T) {
	features := []Feature{{Slug: "dark-mode"}}

	out, err := slugifyHook(context.Background(), corebase.UserContext{}, features)
	require.NoError(t, err)
	assert.Equal(t, "dark-mode", out[0].Slug)
}
