package corebase

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/corebase/corebase/internal/platform/apperr"
)

// validate is shared across every ModelSpec. go-playground/validator's
// struct-tag cache is built per-type on first use and safe for concurrent
// use, so one package-level instance is the idiomatic choice rather than
// one per spec.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	return v
}

// FieldKind drives wire<->domain coercion for one struct field. Most
// fields never need an entry (string/bool/ints round-trip through
// encoding/json without help); Kind is only consulted for the types that
// don't.
type FieldKind int

const (
	KindPassthrough FieldKind = iota // no coercion; json handles it
	KindTime                         // ISO-8601 string <-> time.Time
	KindId                           // id string <-> corebase.Id
)

// FieldSpec describes one field of a ModelSpec: its wire name, its Go
// struct field name (for validator.StructPartial), its coercion kind, and
// whether it appears in the projection schema.
type FieldSpec struct {
	WireName  string
	GoName    string
	Kind      FieldKind
	Projected bool
}

// ModelSpec compiles a schema for entity type T into validators (full and
// derived partial), an encoder/decoder pair, and a projection mask. It is
// constructed once at startup and is immutable thereafter; concurrent use
// is safe.
type ModelSpec[T any] struct {
	Name      string
	Auditable bool
	IdSchema  IdSchema
	Fields    []FieldSpec

	byWireName map[string]FieldSpec
}

// NewModelSpec builds a ModelSpec for T. fields enumerates every field
// corebase needs to reason about beyond what encoding/json already does:
// coercible fields (ids, timestamps) and projected fields. Fields of T not
// listed here still round-trip through Encode/Decode via plain JSON tags;
// they just aren't projectable and aren't coercible.
func NewModelSpec[T any](name string, idSchema IdSchema, auditable bool, fields []FieldSpec) *ModelSpec[T] {
	m := &ModelSpec[T]{
		Name:       name,
		Auditable:  auditable,
		IdSchema:   idSchema,
		Fields:     fields,
		byWireName: make(map[string]FieldSpec, len(fields)),
	}
	for _, f := range fields {
		m.byWireName[f.WireName] = f
	}
	return m
}

// ProjectedFieldNames returns the wire names included in the projection
// schema, in declaration order.
func (m *ModelSpec[T]) ProjectedFieldNames() []string {
	var out []string
	for _, f := range m.Fields {
		if f.Projected {
			out = append(out, f.WireName)
		}
	}
	return out
}

// Validate runs full-schema (partial=false) or partial-schema (partial=true)
// validation against an already-decoded domain value. Partial validation
// only checks the Go struct fields named in presentFields (the fields the
// caller actually supplied), matching ModelSpec's "partial schema is
// derived once, all fields optional" contract: every other `validate` tag
// on T is skipped, not merely relaxed.
func (m *ModelSpec[T]) Validate(value T, partial bool, presentFields ...string) []apperr.FieldError {
	var verr error
	if partial {
		if len(presentFields) == 0 {
			return nil
		}
		verr = validate.StructPartial(value, presentFields...)
	} else {
		verr = validate.Struct(value)
	}
	if verr == nil {
		return nil
	}
	var out []apperr.FieldError
	var verrs validator.ValidationErrors
	if errorsAs(verr, &verrs) {
		for _, fe := range verrs {
			out = append(out, apperr.FieldError{
				Field:   jsonNameFor(value, fe.StructField()),
				Message: describeTag(fe),
			})
		}
		return out
	}
	out = append(out, apperr.FieldError{Field: "", Message: verr.Error()})
	return out
}

// errorsAs is errors.As without importing "errors" twice across the file;
// kept local for readability at the call site above.
func errorsAs(err error, target *validator.ValidationErrors) bool {
	if ve, ok := err.(validator.ValidationErrors); ok {
		*target = ve
		return true
	}
	return false
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// jsonNameFor resolves the json tag name for a Go struct field, falling
// back to the field name itself.
func jsonNameFor(value any, goName string) string {
	t := reflect.TypeOf(value)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	f, ok := t.FieldByName(goName)
	if !ok {
		return goName
	}
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return goName
	}
	return strings.Split(tag, ",")[0]
}

// Decode coerces a wire-format map (already JSON-unmarshaled) into a
// domain value of T. When partial is true, only the keys present in wire
// are coerced and presentFields is populated with their Go struct field
// names (for Validate's StructPartial call and for the service layer's
// field-level merge onto an existing entity). Decode fails with
// apperr.BadRequest when a coercible field (id, timestamp) holds a value
// that can't be converted.
func (m *ModelSpec[T]) Decode(wire map[string]any, partial bool) (value T, presentFields []string, err error) {
	rv := reflect.New(reflect.TypeOf(value)).Elem()
	t := rv.Type()

	for wireName, raw := range wire {
		spec, known := m.byWireName[wireName]
		goName := spec.GoName
		if goName == "" {
			goName = jsonFieldToGoName(t, wireName)
		}
		if goName == "" {
			continue // field not part of this model; ignore silently
		}
		field := rv.FieldByName(goName)
		if !field.IsValid() || !field.CanSet() {
			continue
		}
		if err = setField(field, raw, spec, known); err != nil {
			return value, nil, apperr.BadRequest(fmt.Sprintf("field %q: %v", wireName, err))
		}
		presentFields = append(presentFields, goName)
	}

	value = rv.Interface().(T)
	return value, presentFields, nil
}

// jsonFieldToGoName finds the Go struct field whose json tag matches
// wireName.
func jsonFieldToGoName(t reflect.Type, wireName string) string {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := strings.Split(f.Tag.Get("json"), ",")[0]
		if tag == wireName {
			return f.Name
		}
		if tag == "" && f.Name == wireName {
			return f.Name
		}
	}
	return ""
}

// setField assigns raw (a decoded JSON value: string, float64, bool,
// map[string]any, []any, or nil) into field, applying FieldSpec.Kind
// coercion when known is true.
func setField(field reflect.Value, raw any, spec FieldSpec, known bool) error {
	if raw == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	if known {
		switch spec.Kind {
		case KindTime:
			return setTimeField(field, raw)
		case KindId:
			return setIdField(field, raw)
		}
	}

	return setGenericField(field, raw)
}

func setTimeField(field reflect.Value, raw any) error {
	s, ok := raw.(string)
	if !ok {
		return fmt.Errorf("expected ISO-8601 string, got %T", raw)
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("not a valid ISO-8601 timestamp: %w", err)
	}
	target := field
	isPtr := field.Kind() == reflect.Pointer
	if isPtr {
		target = reflect.New(field.Type().Elem()).Elem()
	}
	target.Set(reflect.ValueOf(ts))
	if isPtr {
		field.Set(target.Addr())
	}
	return nil
}

func setIdField(field reflect.Value, raw any) error {
	s, ok := raw.(string)
	if !ok {
		return fmt.Errorf("expected id string, got %T", raw)
	}
	// Accept both the relational decimal form and the document hex form;
	// the caller's IdSchema has already been selected for the configured
	// backend elsewhere, so here we just accept whichever parses.
	var id Id
	if v, convErr := strconv.ParseInt(s, 10, 64); convErr == nil && v > 0 {
		id = NewRelationalId(v)
	} else if hexID24.MatchString(s) {
		id = NewDocumentId(s)
	} else {
		return fmt.Errorf("not a valid id: %q", s)
	}
	target := field
	isPtr := field.Kind() == reflect.Pointer
	if isPtr {
		target = reflect.New(field.Type().Elem()).Elem()
	}
	target.Set(reflect.ValueOf(id))
	if isPtr {
		field.Set(target.Addr())
	}
	return nil
}

// setGenericField handles every field JSON can already coerce: strings,
// numbers, bools, slices, nested structs/maps via a JSON round-trip.
func setGenericField(field reflect.Value, raw any) error {
	rv := reflect.ValueOf(raw)
	if rv.Type().AssignableTo(field.Type()) {
		field.Set(rv)
		return nil
	}
	if rv.Type().ConvertibleTo(field.Type()) {
		field.Set(rv.Convert(field.Type()))
		return nil
	}
	// Fall back to a JSON round-trip for slices/maps/structs (e.g. raw is
	// []any and field is []string).
	return jsonConvert(raw, field)
}

// Encode converts a domain value into its wire-format map, the inverse of
// Decode. Encode is total on any value that came from Decode, satisfying
// the round-trip invariant.
func (m *ModelSpec[T]) Encode(value T) (map[string]any, error) {
	return m.encode(value, false)
}

// Project encodes value using only the projection schema, omitting every
// field not marked Projected. Used to strip secrets (password hashes,
// internal-only fields) from external responses.
func (m *ModelSpec[T]) Project(value T) (map[string]any, error) {
	return m.encode(value, true)
}

func (m *ModelSpec[T]) encode(value T, projectOnly bool) (map[string]any, error) {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	t := rv.Type()
	out := make(map[string]any, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		wireName := strings.Split(f.Tag.Get("json"), ",")[0]
		if wireName == "-" {
			continue
		}
		if wireName == "" {
			wireName = f.Name
		}
		spec, known := m.byWireName[wireName]
		if projectOnly && !(known && spec.Projected) {
			continue
		}
		val, err := encodeFieldValue(rv.Field(i), spec, known)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", wireName, err)
		}
		out[wireName] = val
	}
	return out, nil
}

func encodeFieldValue(field reflect.Value, spec FieldSpec, known bool) (any, error) {
	if known {
		switch spec.Kind {
		case KindTime:
			return encodeTimeField(field)
		case KindId:
			return encodeIdField(field)
		}
	}
	if field.Kind() == reflect.Pointer && field.IsNil() {
		return nil, nil
	}
	if field.Kind() == reflect.Pointer {
		return field.Elem().Interface(), nil
	}
	return field.Interface(), nil
}

func encodeTimeField(field reflect.Value) (any, error) {
	v := field
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	ts, ok := v.Interface().(time.Time)
	if !ok {
		return nil, fmt.Errorf("not a time.Time")
	}
	return ts.Format(time.RFC3339), nil
}

func encodeIdField(field reflect.Value) (any, error) {
	v := field
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	id, ok := v.Interface().(Id)
	if !ok {
		return nil, fmt.Errorf("not a corebase.Id")
	}
	if id.IsZero() {
		return nil, nil
	}
	return id.String(), nil
}
