package corebase_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebase/corebase/pkg/corebase"
)

type widget struct {
	Id      corebase.Id `json:"_id"`
	Created time.Time   `json:"_created"`
	Name    string      `json:"name" validate:"required,max=10"`
	Secret  string      `json:"secret,omitempty"`
}

func widgetSpec() *corebase.ModelSpec[widget] {
	fields := []corebase.FieldSpec{
		{WireName: "_id", GoName: "Id", Kind: corebase.KindId, Projected: true},
		{WireName: "_created", GoName: "Created", Kind: corebase.KindTime, Projected: true},
		{WireName: "name", GoName: "Name", Projected: true},
		{WireName: "secret", GoName: "Secret", Projected: false},
	}
	return corebase.NewModelSpec[widget]("widgets", corebase.RelationalIdSchema{}, true, fields)
}

func TestModelSpec_DecodeEncodeRoundTrip(t *testing.T) {
	spec := widgetSpec()
	created := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	wire := map[string]any{
		"_id":      "7",
		"_created": created.Format(time.RFC3339),
		"name":     "gadget",
		"secret":   "shh",
	}

	value, present, err := spec.Decode(wire, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Id", "Created", "Name", "Secret"}, present)
	assert.Equal(t, "7", value.Id.String())
	assert.True(t, value.Created.Equal(created))
	assert.Equal(t, "gadget", value.Name)
	assert.Equal(t, "shh", value.Secret)

	encoded, err := spec.Encode(value)
	require.NoError(t, err)
	assert.Equal(t, "7", encoded["_id"])
	assert.Equal(t, "gadget", encoded["name"])
	assert.Equal(t, "shh", encoded["secret"])
}

func TestModelSpec_Project_StripsUnprojectedFields(t *testing.T) {
	spec := widgetSpec()
	value := widget{Id: corebase.NewRelationalId(1), Name: "gadget", Secret: "shh"}

	projected, err := spec.Project(value)
	require.NoError(t, err)

	assert.Equal(t, "gadget", projected["name"])
	_, hasSecret := projected["secret"]
	assert.False(t, hasSecret, "secret must not appear in a projected response")
}

func TestModelSpec_Decode_PartialOnlyTouchesPresentFields(t *testing.T) {
	spec := widgetSpec()

	value, present, err := spec.Decode(map[string]any{"name": "patched"}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name"}, present)
	assert.Equal(t, "patched", value.Name)
	assert.True(t, value.Id.IsZero())
}

func TestModelSpec_Decode_InvalidIdIsBadRequest(t *testing.T) {
	spec := widgetSpec()

	_, _, err := spec.Decode(map[string]any{"_id": "not-an-id"}, false)
	require.Error(t, err)
}

func TestModelSpec_Validate_RequiredAndMaxLen(t *testing.T) {
	spec := widgetSpec()

	errs := spec.Validate(widget{Name: ""}, false)
	require.NotEmpty(t, errs)

	errs = spec.Validate(widget{Name: "this-name-is-too-long"}, false)
	require.NotEmpty(t, errs)

	errs = spec.Validate(widget{Name: "ok"}, false)
	assert.Empty(t, errs)
}

func TestModelSpec_ProjectedFieldNames(t *testing.T) {
	spec := widgetSpec()
	names := spec.ProjectedFieldNames()
	assert.Equal(t, []string{"_id", "_created", "name"}, names)
}
