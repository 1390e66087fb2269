package daggerok

import (
	"reflect"
)

// isNil returns true for nil and for nil values of nilable kinds.
func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

func isNilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return true
	default:
		return false
	}
}

// assignable checks that a stored bean can be used as a value of type t.
// A concrete t needs the exact dynamic type; a named map is not a map[string]any.
func assignable(val any, t reflect.Type) bool {
	if val == nil {
		return isNilable(t)
	}
	if t.Kind() == reflect.Interface {
		return reflect.TypeOf(val).Implements(t)
	}
	return reflect.TypeOf(val) == t
}
