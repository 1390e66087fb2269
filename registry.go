package daggerok

import (
	"reflect"
	"sort"

	"github.com/puzpuzpuz/xsync/v3"
)

// Registry holds beans by key.
//
// A Registry is safe for concurrent use. Register and Get are atomic;
// concurrent registrations of the same key are last write wins.
type Registry struct {
	beans *xsync.MapOf[string, any]
}

// NewRegistry creates an empty [Registry].
func NewRegistry() *Registry {
	return &Registry{
		beans: xsync.NewMapOf[string, any](),
	}
}

// Register stores the bean under the key, replacing any previous bean.
//
// A nil bean is stored as well. Register panics if the key is empty.
func (r *Registry) Register(key string, bean any) *Registry {
	if key == "" {
		panic("daggerok.Registry.Register: key is empty")
	}

	r.beans.Store(key, bean)
	return r
}

// Get returns the bean stored under the key.
//
// The second return value is false if the key is unknown. A key registered with a nil
// bean is reported as present.
func (r *Registry) Get(key string) (any, bool) {
	return r.beans.Load(key)
}

// GetAs returns the bean stored under the key if it is assignable to t.
//
// An unknown key is not an error. A bean that can not be used as a t results in a
// [*TypeMismatchError].
func (r *Registry) GetAs(key string, t reflect.Type) (any, bool, error) {
	bean, ok := r.beans.Load(key)
	if !ok {
		return nil, false, nil
	}

	if !assignable(bean, t) {
		return nil, true, &TypeMismatchError{Key: key, Want: t, Got: reflect.TypeOf(bean)}
	}

	return bean, true, nil
}

// Contains returns true if a bean, nil or not, is stored under the key.
func (r *Registry) Contains(key string) bool {
	_, ok := r.beans.Load(key)
	return ok
}

// Len returns the number of keys.
func (r *Registry) Len() int {
	return r.beans.Size()
}

// Keys returns all keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, r.beans.Size())
	r.beans.Range(func(key string, _ any) bool {
		keys = append(keys, key)
		return true
	})

	sort.Strings(keys)
	return keys
}

// lookup returns the bean only if it is not nil.
// A nil bean does not satisfy a dependency.
func (r *Registry) lookup(key string) (any, bool) {
	bean, ok := r.beans.Load(key)
	if !ok || isNil(bean) {
		return nil, false
	}
	return bean, true
}
