package daggerok

import (
	"reflect"
	"strconv"
	"sync"
)

var typeKeyCache sync.Map

// KeyOf returns the bean key for the given [reflect.Type].
//
// Named types are identified by their full package path and name, for example
// "github.com/acme/app/store.DB". Pointers, slices, arrays, maps and channels are
// composed from the key of their element types:
//
//	*github.com/acme/app/store.DB
//	map[string]interface {}
//
// KeyOf returns an empty string for a nil type.
func KeyOf(t reflect.Type) string {
	if t == nil {
		return ""
	}

	if cached, ok := typeKeyCache.Load(t); ok {
		return cached.(string)
	}

	key := buildTypeKey(t)
	typeKeyCache.Store(t, key)
	return key
}

// KeyFor returns the bean key for the type T.
func KeyFor[T any]() string {
	return KeyOf(reflect.TypeFor[T]())
}

func buildTypeKey(t reflect.Type) string {
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}

	switch t.Kind() {
	case reflect.Ptr:
		return "*" + buildTypeKey(t.Elem())
	case reflect.Slice:
		return "[]" + buildTypeKey(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + buildTypeKey(t.Elem())
	case reflect.Map:
		return "map[" + buildTypeKey(t.Key()) + "]" + buildTypeKey(t.Elem())
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			return "<-chan " + buildTypeKey(t.Elem())
		case reflect.SendDir:
			return "chan<- " + buildTypeKey(t.Elem())
		default:
			return "chan " + buildTypeKey(t.Elem())
		}
	default:
		// Predeclared types, funcs and unnamed structs or interfaces
		return t.String()
	}
}
