package daggerok

import (
	"reflect"
	"strings"
	"sync"

	"github.com/jrivets/log4g"

	"github.com/sectrean/daggerok/internal/errors"
)

// DefaultCatalog is the [Catalog] used by a [Context] unless [Context.WithDiscovery] is called.
//
// Packages add their components to it from init functions:
//
//	func init() {
//		daggerok.Component[*Clock]()
//		daggerok.Injectable(NewService)
//	}
var DefaultCatalog = NewCatalog()

var catalogLog = log4g.GetLogger("daggerok.catalog")

// Catalog is a static registration table of component types and inject constructors.
// It implements [Provider].
//
// Every entry belongs to a search scope, by default the package path of its type.
// A scope query matches the entries of that package and of all packages below it;
// the empty scope matches every entry.
//
// A Catalog is safe for concurrent use.
type Catalog struct {
	mu         sync.RWMutex
	components []componentEntry
	injects    []injectEntry
}

type componentEntry struct {
	scope   string
	t       reflect.Type
	markers []Marker
}

type injectEntry struct {
	scope string
	ctor  *Constructor
}

// NewCatalog creates an empty [Catalog].
func NewCatalog() *Catalog {
	return &Catalog{}
}

// AddComponent adds a component type to the catalog.
//
// The component is marked with [Singleton] unless [WithMarker] is used.
//
// Available options:
//   - [InScope]
//   - [WithMarker]
func (c *Catalog) AddComponent(t reflect.Type, opts ...Option) error {
	if t == nil {
		return errors.New("add component: type is nil")
	}

	var s settings
	err := applyOptions(opts, func(o Option) error {
		return o.apply(&s)
	})
	if err != nil {
		return errors.Wrapf(err, "add component %s", t)
	}
	if s.key != "" || len(s.keyed) > 0 {
		return errors.Errorf("add component %s: keys are not supported for component types", t)
	}

	entry := componentEntry{
		scope:   scopeOf(t, s.scope),
		t:       t,
		markers: s.markers,
	}
	if len(entry.markers) == 0 {
		entry.markers = []Marker{Singleton}
	}

	c.mu.Lock()
	c.components = append(c.components, entry)
	c.mu.Unlock()

	catalogLog.Debug("added component ", KeyOf(t), " to scope '", entry.scope, "'")
	return nil
}

// AddInjectable adds an inject constructor to the catalog.
// See [NewConstructor] for the supported functions.
//
// The constructor is marked with [Inject] unless [WithMarker] is used.
//
// Available options:
//   - [InScope]
//   - [WithMarker]
//   - [WithKey]
//   - [WithKeyed]
func (c *Catalog) AddInjectable(fn any, opts ...Option) error {
	var s settings
	err := applyOptions(opts, func(o Option) error {
		return o.apply(&s)
	})
	if err != nil {
		return errors.Wrapf(err, "add injectable %T", fn)
	}
	if len(s.markers) == 0 {
		opts = append(opts, WithMarker(Inject))
	}

	ctor, err := NewConstructor(fn, opts...)
	if err != nil {
		return errors.Wrap(err, "add injectable")
	}

	entry := injectEntry{
		scope: scopeOf(ctor.Type(), s.scope),
		ctor:  ctor,
	}

	c.mu.Lock()
	c.injects = append(c.injects, entry)
	c.mu.Unlock()

	catalogLog.Debug("added injectable ", ctor, " to scope '", entry.scope, "'")
	return nil
}

// ComponentTypes implements [Provider].
func (c *Catalog) ComponentTypes(scope string, marker Marker) ([]reflect.Type, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.hasScope(scope) {
		return nil, errors.Wrapf(ErrScopeNotFound, "component types %q", scope)
	}

	var types []reflect.Type
	seen := make(map[reflect.Type]struct{})
	for _, e := range c.components {
		if !scopeMatches(e.scope, scope) || !hasMarker(e.markers, marker) {
			continue
		}
		if _, ok := seen[e.t]; ok {
			continue
		}
		seen[e.t] = struct{}{}
		types = append(types, e.t)
	}

	return types, nil
}

// InjectConstructors implements [Provider].
func (c *Catalog) InjectConstructors(scope string, marker Marker) ([]*Constructor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.hasScope(scope) {
		return nil, errors.Wrapf(ErrScopeNotFound, "inject constructors %q", scope)
	}

	var ctors []*Constructor
	for _, e := range c.injects {
		if scopeMatches(e.scope, scope) && e.ctor.HasMarker(marker) {
			ctors = append(ctors, e.ctor)
		}
	}

	return ctors, nil
}

// hasScope must be called with the lock held.
func (c *Catalog) hasScope(scope string) bool {
	for _, e := range c.components {
		if scopeMatches(e.scope, scope) {
			return true
		}
	}
	for _, e := range c.injects {
		if scopeMatches(e.scope, scope) {
			return true
		}
	}
	return false
}

var _ Provider = (*Catalog)(nil)

// Component adds the component type T to the [DefaultCatalog].
// It panics if the options are invalid.
func Component[T any](opts ...Option) {
	if err := DefaultCatalog.AddComponent(reflect.TypeFor[T](), opts...); err != nil {
		panic(err)
	}
}

// Injectable adds the inject constructor fn to the [DefaultCatalog].
// It panics if fn or the options are invalid.
func Injectable(fn any, opts ...Option) {
	if err := DefaultCatalog.AddInjectable(fn, opts...); err != nil {
		panic(err)
	}
}

func scopeOf(t reflect.Type, override *string) string {
	if override != nil {
		return *override
	}
	return pkgPathOf(t)
}

// pkgPathOf returns the package path of the named type behind pointers and containers.
func pkgPathOf(t reflect.Type) string {
	for t.Name() == "" {
		switch t.Kind() {
		case reflect.Ptr, reflect.Slice, reflect.Array, reflect.Chan, reflect.Map:
			t = t.Elem()
		default:
			return ""
		}
	}
	return t.PkgPath()
}

func scopeMatches(entryScope, scope string) bool {
	if scope == "" || entryScope == scope {
		return true
	}
	return strings.HasPrefix(entryScope, scope+"/")
}

func hasMarker(markers []Marker, m Marker) bool {
	for _, em := range markers {
		if em == m {
			return true
		}
	}
	return false
}
