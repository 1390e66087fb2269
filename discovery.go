package daggerok

import (
	"reflect"
)

// Marker labels components and inject constructors for discovery.
type Marker string

const (
	// Singleton is the default component marker.
	Singleton Marker = "singleton"
	// Inject is the default inject constructor marker.
	Inject Marker = "inject"
)

// Provider finds components and inject constructors within a search scope.
//
// Both queries are called once per configured scope for every [Context.Initialize].
// An error fails the scope only; see [Context.FailOnUnknownDiscoveryErrors].
//
// [Catalog] is the Provider used by default.
type Provider interface {
	// ComponentTypes returns the types marked with the component marker.
	ComponentTypes(scope string, marker Marker) ([]reflect.Type, error)

	// InjectConstructors returns the constructors marked with the inject marker.
	InjectConstructors(scope string, marker Marker) ([]*Constructor, error)
}

// ProviderFuncs adapts a pair of functions to a [Provider].
// A nil function finds nothing.
type ProviderFuncs struct {
	Components func(scope string, marker Marker) ([]reflect.Type, error)
	Injects    func(scope string, marker Marker) ([]*Constructor, error)
}

func (p ProviderFuncs) ComponentTypes(scope string, marker Marker) ([]reflect.Type, error) {
	if p.Components == nil {
		return nil, nil
	}
	return p.Components(scope, marker)
}

func (p ProviderFuncs) InjectConstructors(scope string, marker Marker) ([]*Constructor, error) {
	if p.Injects == nil {
		return nil, nil
	}
	return p.Injects(scope, marker)
}

var _ Provider = ProviderFuncs{}
