package uuidv7_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebase/corebase/pkg/uuidv7"
)

func TestNew_ProducesValidV7UUID(t *testing.T) {
	s := uuidv7.New()

	parsed, err := uuid.Parse(s)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestNew_ProducesUniqueValues(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s := uuidv7.New()
		assert.False(t, seen[s], "uuidv7.New produced a duplicate")
		seen[s] = true
	}
}
