package corebase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebase/corebase/pkg/corebase"
)

func TestId_RelationalRoundTrip(t *testing.T) {
	id := corebase.NewRelationalId(42)

	assert.Equal(t, "42", id.String())
	assert.False(t, id.IsZero())

	v, ok := id.Int64()
	require.True(t, ok)
	assert.Equal(t, int64(42), v)

	_, ok = id.Hex()
	assert.False(t, ok)
}

func TestId_DocumentRoundTrip(t *testing.T) {
	id := corebase.NewDocumentId("507f1f77bcf86cd799439011")

	assert.Equal(t, "507f1f77bcf86cd799439011", id.String())
	assert.False(t, id.IsZero())

	h, ok := id.Hex()
	require.True(t, ok)
	assert.Equal(t, "507f1f77bcf86cd799439011", h)

	_, ok = id.Int64()
	assert.False(t, ok)
}

func TestId_IsZero(t *testing.T) {
	var id corebase.Id
	assert.True(t, id.IsZero())
	assert.False(t, corebase.NewRelationalId(1).IsZero())
}

func TestRelationalIdSchema_Parse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "123", false},
		{"zero", "0", true},
		{"negative", "-5", true},
		{"not_a_number", "abc", true},
		{"empty", "", true},
	}

	var schema corebase.RelationalIdSchema
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := schema.Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, id.String())
		})
	}
}

func TestDocumentIdSchema_Parse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "507f1f77bcf86cd799439011", false},
		{"too_short", "507f1f77", true},
		{"not_hex", "zzzf1f77bcf86cd799439011", true},
		{"empty", "", true},
	}

	var schema corebase.DocumentIdSchema
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := schema.Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, id.String())
		})
	}
}
