package daggerok

import (
	"reflect"
	"sync"

	"github.com/jrivets/log4g"

	"github.com/sectrean/daggerok/config"
	"github.com/sectrean/daggerok/internal/errors"
)

var contextLog = log4g.GetLogger("daggerok.context")

// Context discovers components, builds them in dependency order and holds the
// resulting beans.
//
// Configure the Context, optionally register beans manually, then call [Context.Initialize]:
//
//	c := daggerok.New("github.com/acme/app").
//		FailOnBeanCreationError(true).
//		Register("config", map[string]any{"msg": "hi"})
//
//	if err := c.Initialize(); err != nil {
//		return err
//	}
//
//	svc, ok, err := daggerok.Bean[*app.Service](c)
//
// Configuration is frozen once Initialize has started. Configuration calls made after
// that leave the configuration unchanged and are reported by [Context.Err].
// Beans can be registered and looked up at any time; lookups only return beans that
// exist when they are called.
//
// A Context is safe for concurrent lookups and registrations. Initialize must be called
// once, from a single goroutine.
type Context struct {
	mu       sync.Mutex
	state    State
	cfg      resolveConfig
	provider Provider
	registry *Registry
	errs     errors.MultiError
	report   Report
}

// New creates a [Context] searching the given scopes, usually package paths.
func New(scopes ...string) *Context {
	c := &Context{
		cfg: resolveConfig{
			componentMarker: Singleton,
			injectMarker:    Inject,
		},
		provider: DefaultCatalog,
		registry: NewRegistry(),
	}

	if len(scopes) > 0 {
		c.WithSearchScopes(scopes...)
	}

	return c
}

// configure runs f under the lock unless the configuration is frozen.
func (c *Context) configure(op string, f func() error) *Context {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.frozen() {
		err := configErrorf("%s: context is %s, configuration is frozen", op, c.state)
		contextLog.Warn(err)
		c.errs = c.errs.Append(err)
		return c
	}

	if err := f(); err != nil {
		contextLog.Error(err)
		c.errs = c.errs.Append(err)
		return c
	}

	c.state = Configured
	return c
}

// WithSearchScopes adds search scopes.
//
// An empty scope matches every package. It is accepted, but slows discovery down and
// picks up components of every registered package.
func (c *Context) WithSearchScopes(scopes ...string) *Context {
	return c.configure("with search scopes", func() error {
		for _, s := range scopes {
			if s == "" {
				contextLog.Warn("Detected empty search scope! It includes the components of every package, ",
					"use the scope of your application components instead.")
			}
		}
		c.cfg.scopes = append(c.cfg.scopes, scopes...)
		return nil
	})
}

// WithSearchTypes adds the package paths of the given types as search scopes.
func (c *Context) WithSearchTypes(types ...reflect.Type) *Context {
	scopes := make([]string, 0, len(types))
	for _, t := range types {
		if t == nil {
			c.configure("with search types", func() error {
				return configErrorf("with search types: type is nil")
			})
			return c
		}
		scopes = append(scopes, pkgPathOf(t))
	}

	return c.WithSearchScopes(scopes...)
}

// WithComponentMarker sets the marker of component types. Default: [Singleton].
func (c *Context) WithComponentMarker(m Marker) *Context {
	return c.configure("with component marker", func() error {
		if m == "" {
			return configErrorf("with component marker: marker is empty")
		}
		c.cfg.componentMarker = m
		return nil
	})
}

// WithInjectMarker sets the marker of inject constructors. Default: [Inject].
func (c *Context) WithInjectMarker(m Marker) *Context {
	return c.configure("with inject marker", func() error {
		if m == "" {
			return configErrorf("with inject marker: marker is empty")
		}
		c.cfg.injectMarker = m
		return nil
	})
}

// FailOnInjectNullRef makes [Context.Initialize] fail with [ErrBeanNotFound] when a
// constructor results in nil, instead of registering the nil bean. Default: false.
func (c *Context) FailOnInjectNullRef(fail bool) *Context {
	return c.configure("fail on inject null ref", func() error {
		c.cfg.failOnInjectNullRef = fail
		return nil
	})
}

// FailOnBeanCreationError makes [Context.Initialize] fail with [ErrCreationFailed] when
// a constructor returns an error or panics, instead of skipping the bean. Default: false.
func (c *Context) FailOnBeanCreationError(fail bool) *Context {
	return c.configure("fail on bean creation error", func() error {
		c.cfg.failOnBeanCreationError = fail
		return nil
	})
}

// FailOnUnknownDiscoveryErrors makes [Context.Initialize] fail with [ErrDiscoveryFailed]
// when the [Provider] fails for a scope, instead of skipping the scope. Default: false.
func (c *Context) FailOnUnknownDiscoveryErrors(fail bool) *Context {
	return c.configure("fail on unknown discovery errors", func() error {
		c.cfg.failOnUnknownDiscoveryErrors = fail
		return nil
	})
}

// WithDiscovery sets the [Provider]. Default: [DefaultCatalog].
func (c *Context) WithDiscovery(p Provider) *Context {
	return c.configure("with discovery", func() error {
		if p == nil {
			return configErrorf("with discovery: provider is nil")
		}
		c.provider = p
		return nil
	})
}

// WithConfig applies a loaded configuration. Search scopes are added to the
// configured ones and markers replace the current markers. Failure policies set
// in cfg are switched on.
func (c *Context) WithConfig(cfg *config.Config) *Context {
	return c.configure("with config", func() error {
		if cfg == nil {
			return configErrorf("with config: config is nil")
		}

		merged := config.GetDefaultConfig()
		merged.Apply(cfg)
		if err := merged.Validate(); err != nil {
			return configErrorf("with config: %v", err)
		}

		c.cfg.scopes = append(c.cfg.scopes, merged.SearchScopes...)
		c.cfg.componentMarker = Marker(merged.ComponentMarker)
		c.cfg.injectMarker = Marker(merged.InjectMarker)
		c.cfg.failOnInjectNullRef = c.cfg.failOnInjectNullRef || merged.FailOnInjectNullRef
		c.cfg.failOnBeanCreationError = c.cfg.failOnBeanCreationError || merged.FailOnBeanCreationError
		c.cfg.failOnUnknownDiscoveryErrors = c.cfg.failOnUnknownDiscoveryErrors || merged.FailOnUnknownDiscoveryErrors
		return nil
	})
}

// Register stores a bean under the key, replacing any previous bean.
// It can be called at any time, before or after [Context.Initialize].
//
// An empty key is reported by [Context.Err] and fails Initialize.
func (c *Context) Register(key string, bean any) *Context {
	if key == "" {
		err := configErrorf("register %T: key is empty", bean)
		contextLog.Error(err)
		c.appendErr(err)
		return c
	}

	c.registry.Register(key, bean)
	c.touch()
	return c
}

// RegisterType stores a bean under the key of type t. See [Context.Register].
//
// A bean not assignable to t is not registered, the [*TypeMismatchError] is reported by
// [Context.Err].
func (c *Context) RegisterType(t reflect.Type, bean any) *Context {
	if t == nil {
		err := configErrorf("register type: type is nil")
		contextLog.Error(err)
		c.appendErr(err)
		return c
	}

	if !assignable(bean, t) {
		err := errors.Wrap(&TypeMismatchError{Key: KeyOf(t), Want: t, Got: reflect.TypeOf(bean)}, "register type")
		contextLog.Error(err)
		c.appendErr(err)
		return c
	}

	return c.Register(KeyOf(t), bean)
}

// Provide stores the bean under the key of type T.
func Provide[T any](c *Context, bean T) *Context {
	return c.Register(KeyFor[T](), bean)
}

func (c *Context) appendErr(err error) {
	c.mu.Lock()
	c.errs = c.errs.Append(err)
	c.mu.Unlock()
}

// touch moves a new Context to Configured.
func (c *Context) touch() {
	c.mu.Lock()
	if c.state == Unconfigured {
		c.state = Configured
	}
	c.mu.Unlock()
}

// Initialize discovers and creates beans, then registers the Context itself under
// the key of *Context.
//
// Beans with a no-arg constructor are created first. Beans with parameters are then
// created as soon as all their dependencies are present, retrying until every bean is
// created or as many consecutive passes as there were beans to create made no
// progress. Beans that can not be created, for example because of a dependency
// cycle, are left out and listed in [Context.Report].
//
// Initialize blocks until resolution is done. It fails with a configuration error when
// no search scope is set, when configuration errors were reported earlier, or when
// called more than once. The failure policies decide which other errors are returned.
func (c *Context) Initialize() error {
	c.mu.Lock()

	if c.state.frozen() {
		state := c.state
		c.mu.Unlock()
		return errors.Wrap(configErrorf("context is %s", state), "daggerok.Context.Initialize")
	}

	if err := c.errs.Join(); err != nil {
		c.mu.Unlock()
		return errors.Wrap(err, "daggerok.Context.Initialize")
	}

	if len(c.cfg.scopes) == 0 {
		c.mu.Unlock()
		err := errors.Wrap(configErrorf("list of search scopes may not be empty"), "daggerok.Context.Initialize")
		contextLog.Error(err)
		return err
	}

	c.state = Resolving
	cfg := c.cfg
	cfg.scopes = append([]string(nil), c.cfg.scopes...)
	provider := c.provider
	c.mu.Unlock()

	r := newResolver(cfg, provider, c.registry)
	err := r.run()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.report = r.report
	if err != nil {
		c.state = Failed
		return errors.Wrap(err, "daggerok.Context.Initialize")
	}

	c.registry.Register(KeyOf(typeContext), c)
	c.state = Ready

	contextLog.Info("Initialized ", c.report.Created, " beans in ", c.report.Passes, " passes, ",
		len(c.report.Unresolved), " unresolved")
	return nil
}

// State returns the lifecycle state.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Err returns the configuration errors reported so far.
func (c *Context) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.errs.Join()
}

// Report returns the outcome of [Context.Initialize].
// It is empty before Initialize has finished.
func (c *Context) Report() Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.report
}

// Registry returns the registry holding the beans.
func (c *Context) Registry() *Registry {
	return c.registry
}

// GetBean returns the bean registered under the key of type t.
func (c *Context) GetBean(t reflect.Type) (any, bool) {
	if t == nil {
		return nil, false
	}
	return c.registry.Get(KeyOf(t))
}

// GetBeanByKey returns the bean registered under the key.
func (c *Context) GetBeanByKey(key string) (any, bool) {
	return c.registry.Get(key)
}

// GetBeanAs returns the bean registered under the key if it is assignable to t.
// See [Registry.GetAs].
func (c *Context) GetBeanAs(key string, t reflect.Type) (any, bool, error) {
	if t == nil {
		return nil, false, configErrorf("get bean %q: type is nil", key)
	}

	bean, ok, err := c.registry.GetAs(key, t)
	if err != nil {
		return nil, ok, errors.Wrap(err, "daggerok.Context.GetBeanAs")
	}
	return bean, ok, nil
}

// Bean returns the bean registered under the key of type T.
//
// The second return value is false if there is no such bean.
func Bean[T any](c *Context) (T, bool, error) {
	return BeanAs[T](c, KeyFor[T]())
}

// BeanAs returns the bean registered under the key as a T.
//
// A bean that is not a T results in an error wrapping [ErrTypeMismatch].
func BeanAs[T any](c *Context, key string) (T, bool, error) {
	var val T

	bean, ok, err := c.GetBeanAs(key, reflect.TypeFor[T]())
	if err != nil || !ok {
		return val, ok, err
	}

	if bean == nil {
		return val, true, nil
	}

	val, isT := bean.(T)
	if !isT {
		err := &TypeMismatchError{Key: key, Want: reflect.TypeFor[T](), Got: reflect.TypeOf(bean)}
		return val, true, errors.Wrap(err, "daggerok.BeanAs")
	}
	return val, true, nil
}

// MustBean returns the bean registered under the key of type T.
//
// It panics if there is no such bean or it is not a T.
func MustBean[T any](c *Context) T {
	val, ok, err := Bean[T](c)
	if err != nil {
		panic(err)
	}
	if !ok {
		panic(errors.Wrapf(ErrBeanNotFound, "daggerok.MustBean %s", KeyFor[T]()))
	}
	return val
}
