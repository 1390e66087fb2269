package daggerok

import (
	"reflect"
	"sort"

	"github.com/jrivets/log4g"
)

var resolverLog = log4g.GetLogger("daggerok.resolver")

// resolveConfig is the configuration snapshot taken when resolution begins.
type resolveConfig struct {
	scopes                       []string
	componentMarker              Marker
	injectMarker                 Marker
	failOnInjectNullRef          bool
	failOnBeanCreationError      bool
	failOnUnknownDiscoveryErrors bool
}

// resolver runs a single resolution. It is not safe for concurrent use,
// only the registry is shared.
type resolver struct {
	cfg      resolveConfig
	provider Provider
	registry *Registry
	report   Report
	// declared holds the keys of parameterized constructors, which are never
	// created on demand
	declared map[string]struct{}
	// failed holds the keys with a suppressed creation error in the report
	failed map[string]struct{}
}

func newResolver(cfg resolveConfig, provider Provider, registry *Registry) *resolver {
	return &resolver{
		cfg:      cfg,
		provider: provider,
		registry: registry,
		declared: make(map[string]struct{}),
		failed:   make(map[string]struct{}),
	}
}

// run discovers constructors, creates no-arg beans and then resolves the rest.
func (r *resolver) run() error {
	zeroArg, parameterized, err := r.discover()
	if err != nil {
		return err
	}

	r.report.Discovered = len(zeroArg) + len(parameterized)

	if err := r.createNoArgBeans(zeroArg); err != nil {
		return err
	}

	return r.resolveParameterized(parameterized)
}

// discover queries the provider for every scope and splits the constructors
// by whether they take parameters.
//
// A component type gets a zero value constructor unless an inject constructor
// already declares its key.
func (r *resolver) discover() (zeroArg, parameterized []*Constructor, err error) {
	var injects []*Constructor
	var types []reflect.Type
	seenCtors := make(map[*Constructor]struct{})
	seenTypes := make(map[reflect.Type]struct{})

	for _, scope := range r.cfg.scopes {
		resolverLog.Debug("processing scope '", scope, "' for ", r.cfg.injectMarker, " injectors")

		found, err := r.provider.InjectConstructors(scope, r.cfg.injectMarker)
		if err := r.discoveryFault(scope, err); err != nil {
			return nil, nil, err
		}
		for _, ctor := range found {
			if _, ok := seenCtors[ctor]; ok || ctor == nil {
				continue
			}
			seenCtors[ctor] = struct{}{}
			injects = append(injects, ctor)
		}

		resolverLog.Debug("processing scope '", scope, "' for ", r.cfg.componentMarker, " components")

		components, err := r.provider.ComponentTypes(scope, r.cfg.componentMarker)
		if err := r.discoveryFault(scope, err); err != nil {
			return nil, nil, err
		}
		for _, t := range components {
			if _, ok := seenTypes[t]; ok || t == nil {
				continue
			}
			seenTypes[t] = struct{}{}
			types = append(types, t)
		}
	}

	injectKeys := make(map[string]struct{}, len(injects))
	for _, ctor := range injects {
		injectKeys[ctor.Key()] = struct{}{}

		if ctor.NumParams() == 0 {
			zeroArg = append(zeroArg, ctor)
		} else {
			parameterized = append(parameterized, ctor)
		}
	}

	for _, t := range types {
		if _, ok := injectKeys[KeyOf(t)]; ok {
			resolverLog.Debug("component ", KeyOf(t), " has an inject constructor")
			continue
		}

		ctor, err := ZeroValueConstructor(t)
		if err != nil {
			resolverLog.Debug("skipping component ", KeyOf(t), ": ", err)
			continue
		}
		zeroArg = append(zeroArg, ctor)
	}

	return zeroArg, parameterized, nil
}

// discoveryFault applies the discovery failure policy. It returns nil when the fault
// is skipped.
func (r *resolver) discoveryFault(scope string, err error) error {
	if err == nil {
		return nil
	}

	de := &DiscoveryError{Scope: scope, Cause: err}
	if r.cfg.failOnUnknownDiscoveryErrors {
		resolverLog.Error(de)
		return de
	}

	resolverLog.Debug("skipping scope '", scope, "': ", err)
	r.report.Suppressed = append(r.report.Suppressed, de)
	return nil
}

func (r *resolver) createNoArgBeans(ctors []*Constructor) error {
	for _, ctor := range ctors {
		resolverLog.Debug("injecting ", ctor.Key(), "...")

		if _, _, err := r.injectAndRegister(ctor, nil); err != nil {
			return err
		}
	}
	return nil
}

// resolveParameterized retries unresolved constructors until all are resolved or a
// number of consecutive passes equal to the initial count made no progress.
func (r *resolver) resolveParameterized(ctors []*Constructor) error {
	for _, ctor := range ctors {
		r.declared[ctor.Key()] = struct{}{}
	}

	set := newUnresolvedSet(ctors)
	left := set.Len()
	retry := left

	for left > 0 && retry > 0 {
		r.report.Passes++
		before := left

		for _, count := range set.counts {
			group := set.groups[count]
			remaining := make([]*Constructor, 0, len(group))

			for _, ctor := range group {
				resolved, err := r.tryResolve(ctor)
				if err != nil {
					return err
				}

				if resolved {
					left--
				} else {
					remaining = append(remaining, ctor)
				}
			}

			set.groups[count] = remaining
		}

		if left == before {
			retry--
		}
	}

	for _, ctor := range set.All() {
		resolverLog.Debug("unresolved ", ctor)
		r.report.Unresolved = append(r.report.Unresolved, ctor.Key())
	}
	sort.Strings(r.report.Unresolved)

	return nil
}

// tryResolve returns true if the bean of the constructor is present after the call.
func (r *resolver) tryResolve(ctor *Constructor) (bool, error) {
	if _, ok := r.registry.lookup(ctor.Key()); ok {
		// Registered manually or created on demand
		return true, nil
	}

	args := make([]reflect.Value, ctor.NumParams())
	complete := true

	// Every parameter is looked at even after a miss, so on-demand beans are
	// created for all of them in the same pass.
	for i, p := range ctor.params {
		val, ok, err := r.resolveParam(p)
		if err != nil {
			return false, err
		}
		if !ok {
			complete = false
			continue
		}
		args[i] = reflect.ValueOf(val)
	}

	if !complete {
		return false, nil
	}

	resolverLog.Debug("injecting ", ctor, "...")
	_, ok, err := r.injectAndRegister(ctor, args)
	return ok, err
}

// resolveParam finds a non-nil bean for the parameter. A struct type without a
// parameterized constructor and without a registered bean gets a zero value bean
// created on demand.
func (r *resolver) resolveParam(p Param) (any, bool, error) {
	if bean, ok := r.registry.lookup(p.Key); ok {
		if !assignable(bean, p.Type) {
			err := &TypeMismatchError{Key: p.Key, Want: p.Type, Got: reflect.TypeOf(bean)}
			resolverLog.Error(err)
			return nil, false, err
		}
		return bean, true, nil
	}

	// The Context is only available once it is registered after resolution
	if p.Type == typeContext || !isZeroConstructible(p.Type) {
		return nil, false, nil
	}
	if _, ok := r.declared[p.Key]; ok || r.registry.Contains(p.Key) {
		// A nil bean is never replaced by a zero value
		return nil, false, nil
	}

	ctor, err := ZeroValueConstructor(p.Type, WithKey(p.Key))
	if err != nil {
		return nil, false, nil
	}

	resolverLog.Debug("creating ", p.Key, " on demand")
	return r.injectAndRegister(ctor, nil)
}

// injectAndRegister creates the bean and registers it, applying the creation and nil
// policies. The second return value is true if a non-nil bean was registered.
func (r *resolver) injectAndRegister(ctor *Constructor, args []reflect.Value) (any, bool, error) {
	bean, err := ctor.newInstance(args)
	if err != nil {
		resolverLog.Debug("creating bean ", ctor.Key(), " failed: ", err)

		if r.cfg.failOnBeanCreationError {
			resolverLog.Error(err)
			return nil, false, err
		}

		// A constructor left unresolved fails again on every pass
		if _, ok := r.failed[ctor.Key()]; !ok {
			r.failed[ctor.Key()] = struct{}{}
			r.report.Suppressed = append(r.report.Suppressed, err)
		}
		if r.cfg.failOnInjectNullRef {
			nf := &BeanNotFoundError{Type: ctor.Type(), Key: ctor.Key(), Cause: err}
			resolverLog.Error(nf)
			return nil, false, nf
		}

		return nil, false, nil
	}

	if isNil(bean) {
		if r.cfg.failOnInjectNullRef {
			nf := &BeanNotFoundError{Type: ctor.Type(), Key: ctor.Key()}
			resolverLog.Error(nf)
			return nil, false, nf
		}

		resolverLog.Debug("injecting bean ", ctor.Key(), " resulted in nil")
		r.register(ctor.Key(), bean)
		return nil, false, nil
	}

	r.register(ctor.Key(), bean)
	return bean, true, nil
}

// register stores the bean. Created counts every key once, however often its
// constructor runs.
func (r *resolver) register(key string, bean any) {
	if !r.registry.Contains(key) {
		r.report.Created++
	}
	r.registry.Register(key, bean)
}

// unresolvedSet groups constructors by parameter count.
type unresolvedSet struct {
	// counts is sorted ascending
	counts []int
	groups map[int][]*Constructor
}

func newUnresolvedSet(ctors []*Constructor) *unresolvedSet {
	s := &unresolvedSet{
		groups: make(map[int][]*Constructor),
	}

	for _, ctor := range ctors {
		n := ctor.NumParams()
		if _, ok := s.groups[n]; !ok {
			s.counts = append(s.counts, n)
		}
		s.groups[n] = append(s.groups[n], ctor)
	}

	sort.Ints(s.counts)
	return s
}

// Len returns the number of constructors in all groups.
func (s *unresolvedSet) Len() int {
	n := 0
	for _, g := range s.groups {
		n += len(g)
	}
	return n
}

// All returns the constructors in group order.
func (s *unresolvedSet) All() []*Constructor {
	var all []*Constructor
	for _, count := range s.counts {
		all = append(all, s.groups[count]...)
	}
	return all
}
