package daggerok

import (
	"reflect"

	"github.com/sectrean/daggerok/internal/errors"
)

// Option configures a [Constructor] or a [Catalog] entry.
//
// Available options:
//   - [WithKey]
//   - [WithKeyed]
//   - [WithMarker]
//   - [InScope]
type Option interface {
	apply(*settings) error
}

type settings struct {
	key     string
	keyed   []keyedOption
	markers []Marker
	scope   *string
}

type optionFunc func(*settings) error

func (f optionFunc) apply(s *settings) error {
	return f(s)
}

// WithKey sets the key the bean is registered with,
// instead of the key of the constructor's result type.
func WithKey(key string) Option {
	return optionFunc(func(s *settings) error {
		if key == "" {
			return errors.New("with key: key is empty")
		}
		s.key = key
		return nil
	})
}

// WithKeyed sets the key used to resolve a constructor parameter of type Dependency.
//
// This option can be used multiple times for constructors with several parameters of
// the same type. Each use assigns the first parameter of that type that still carries
// its default key.
//
// Example:
//
//	daggerok.Injectable(NewGreeter,
//		daggerok.WithKeyed[map[string]any]("config"),
//	)
//
// The constructor fails to build if it has no such parameter.
func WithKeyed[Dependency any](key string) Option {
	return optionFunc(func(s *settings) error {
		if key == "" {
			return errors.New("with keyed: key is empty")
		}
		s.keyed = append(s.keyed, keyedOption{t: reflect.TypeFor[Dependency](), key: key})
		return nil
	})
}

// WithMarker adds a marker to a constructor or a catalog entry.
func WithMarker(m Marker) Option {
	return optionFunc(func(s *settings) error {
		if m == "" {
			return errors.New("with marker: marker is empty")
		}
		s.markers = append(s.markers, m)
		return nil
	})
}

// InScope sets the search scope of a catalog entry, instead of the package path of its type.
func InScope(scope string) Option {
	return optionFunc(func(s *settings) error {
		s.scope = &scope
		return nil
	})
}

type keyedOption struct {
	t   reflect.Type
	key string
}

// applyParams assigns the key to the first parameter of the right type that still
// has its default key. The slice is modified in place.
func (o keyedOption) applyParams(params []Param) error {
	for i := range params {
		if params[i].Type == o.t && params[i].Key == KeyOf(o.t) {
			params[i].Key = o.key
			return nil
		}
	}
	return errors.Errorf("with keyed %s: parameter not found", o.t)
}

// Apply functional options and join any errors together.
func applyOptions[O any](opts []O, f func(O) error) error {
	var errs errors.MultiError

	for _, o := range opts {
		errs = errs.Append(f(o))
	}

	return errs.Join()
}
