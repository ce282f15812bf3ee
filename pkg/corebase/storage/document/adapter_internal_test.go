package document

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/corebase/corebase/pkg/corebase"
)

func TestPredicateValue_ContainsEscapesRegexMetacharacters(t *testing.T) {
	pred := corebase.Predicate{Op: corebase.OpContains, Value: "a.*b(c|d)"}

	got := predicateValue(pred, pred.Value)

	want := bson.M{"$regex": regexp.QuoteMeta("a.*b(c|d)"), "$options": "i"}
	assert.Equal(t, want, got)
}

func TestPredicateValue_ContainsPlainSubstringUnaffected(t *testing.T) {
	pred := corebase.Predicate{Op: corebase.OpContains, Value: "widget"}

	got := predicateValue(pred, pred.Value)
	assert.Equal(t, bson.M{"$regex": "widget", "$options": "i"}, got)
}

func TestPredicateValue_Eq_ReturnsRawValue(t *testing.T) {
	pred := corebase.Predicate{Op: corebase.OpEq, Value: "widget"}
	assert.Equal(t, "widget", predicateValue(pred, pred.Value))
}
