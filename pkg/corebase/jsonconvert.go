package corebase

import (
	"encoding/json"
	"reflect"
)

// jsonConvert assigns raw into field by round-tripping through
// encoding/json. It's the fallback setGenericField reaches for when raw's
// dynamic type (typically []any or map[string]any, the shapes
// encoding/json produces for untyped destinations) isn't directly
// assignable or convertible to field's type — nested structs and typed
// slices being the common case.
func jsonConvert(raw any, field reflect.Value) error {
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	ptr := reflect.New(field.Type())
	if err := json.Unmarshal(b, ptr.Interface()); err != nil {
		return err
	}
	field.Set(ptr.Elem())
	return nil
}
