package testitem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebase/corebase/internal/demo/testitem"
	"github.com/corebase/corebase/pkg/corebase"
)

func TestSpec_Project_OmitsSecret(t *testing.T) {
	spec := testitem.Spec(corebase.RelationalIdSchema{})

	item := testitem.TestItem{
		Id:     corebase.NewRelationalId(1),
		OrgId:  corebase.NewRelationalId(2),
		Label:  "widget",
		Secret: "classified",
	}

	projected, err := spec.Project(item)
	require.NoError(t, err)

	assert.Equal(t, "widget", projected["label"])
	_, hasSecret := projected["secret"]
	assert.False(t, hasSecret)
}

func TestSpec_Encode_IncludesSecret(t *testing.T) {
	spec := testitem.Spec(corebase.RelationalIdSchema{})

	item := testitem.TestItem{Id: corebase.NewRelationalId(1), Label: "widget", Secret: "classified"}
	encoded, err := spec.Encode(item)
	require.NoError(t, err)
	assert.Equal(t, "classified", encoded["secret"])
}

func TestSpec_Validate_RequiresLabel(t *testing.T) {
	spec := testitem.Spec(corebase.RelationalIdSchema{})

	errs := spec.Validate(testitem.TestItem{}, false)
	assert.NotEmpty(t, errs)

	errs = spec.Validate(testitem.TestItem{Label: "widget"}, false)
	assert.Empty(t, errs)
}
