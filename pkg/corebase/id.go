// Package corebase is the reusable framework library: ModelSpec-driven
// validation/encoding, the Storage abstraction over document and relational
// backends, the relational Join Planner, the GenericService/MultiTenantService
// pipeline, the Controller REST mapping, and the Migration Engine.
package corebase

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/corebase/corebase/internal/platform/apperr"
)

// kind distinguishes the two backend-native id representations a value of
// [Id] may carry.
type kind int

const (
	kindRelational kind = iota
	kindDocument
)

var hexID24 = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// Id is a sum over the two backend-native identity representations: a
// positive integer for the relational backend, a 24-hex string for the
// document backend. The service and controller layers only ever see the
// wire form (a string); Id is how the storage boundary carries whichever
// native representation the configured backend actually uses.
type Id struct {
	k      kind
	intVal int64
	strVal string
}

// IsZero reports whether id is the zero value (never parsed or assigned).
func (id Id) IsZero() bool {
	return id.k == kindRelational && id.intVal == 0 && id.strVal == ""
}

// String renders id in its wire form: decimal digits for relational ids,
// the 24-hex string verbatim for document ids.
func (id Id) String() string {
	if id.k == kindDocument {
		return id.strVal
	}
	return strconv.FormatInt(id.intVal, 10)
}

// Int64 returns the relational integer value. ok is false for document ids.
func (id Id) Int64() (int64, bool) {
	if id.k != kindRelational {
		return 0, false
	}
	return id.intVal, true
}

// Hex returns the document 24-hex value. ok is false for relational ids.
func (id Id) Hex() (string, bool) {
	if id.k != kindDocument {
		return "", false
	}
	return id.strVal, true
}

// NewRelationalId wraps a positive relational integer id.
func NewRelationalId(v int64) Id { return Id{k: kindRelational, intVal: v} }

// NewDocumentId wraps a 24-hex document id. Callers that already hold a
// validated hex string (e.g. freshly generated by the storage driver) use
// this directly; ids arriving off the wire go through [IdSchema.Parse].
func NewDocumentId(v string) Id { return Id{k: kindDocument, strVal: v} }

// IdSchema converts between the wire representation of an id (always a
// string) and the backend-native [Id] value. Controllers use it on ingress
// to reject malformed path parameters with BadRequest before the request
// ever reaches a Service.
type IdSchema interface {
	// Parse validates and converts a wire-format id string. It returns
	// apperr.BadRequest on malformed input.
	Parse(s string) (Id, error)
}

// RelationalIdSchema parses decimal-digit strings of a positive integer,
// the id format emitted by the relational adapter's serial columns.
type RelationalIdSchema struct{}

func (RelationalIdSchema) Parse(s string) (Id, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return Id{}, apperr.BadRequest(fmt.Sprintf("invalid id %q", s))
	}
	return NewRelationalId(v), nil
}

// DocumentIdSchema parses 24-hex strings, the id format emitted by the
// document adapter's native object ids.
type DocumentIdSchema struct{}

func (DocumentIdSchema) Parse(s string) (Id, error) {
	if !hexID24.MatchString(s) {
		return Id{}, apperr.BadRequest(fmt.Sprintf("invalid id %q", s))
	}
	return NewDocumentId(s), nil
}
