package daggerok_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sectrean/daggerok"
	"github.com/sectrean/daggerok/config"
	"github.com/sectrean/daggerok/internal/testtypes"
	"github.com/sectrean/daggerok/internal/testutils"
)

func TestNew(t *testing.T) {
	c := daggerok.New(testtypes.Scope)

	assert.Equal(t, daggerok.Configured, c.State())
	assert.NoError(t, c.Err())
	assert.Equal(t, 0, c.Registry().Len())

	empty := daggerok.New()
	assert.Equal(t, daggerok.Unconfigured, empty.State())
}

func TestContext_Initialize(t *testing.T) {
	t.Run("dependency chain", func(t *testing.T) {
		cat := newCatalog(t, testtypes.TypeClockPtr)
		require.NoError(t, cat.AddInjectable(testtypes.NewService))

		c := daggerok.New(testtypes.Scope).WithDiscovery(cat)
		err := c.Initialize()
		require.NoError(t, err)
		assert.Equal(t, daggerok.Ready, c.State())

		clock, ok, err := daggerok.Bean[*testtypes.Clock](c)
		require.NoError(t, err)
		require.True(t, ok)

		svc, ok, err := daggerok.Bean[*testtypes.Service](c)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Same(t, clock, svc.Clock)

		report := c.Report()
		assert.Equal(t, 2, report.Discovered)
		assert.Equal(t, 2, report.Created)
		assert.Equal(t, 1, report.Passes)
		assert.True(t, report.Complete())
		assert.NoError(t, report.Err())
	})

	t.Run("config bean by key", func(t *testing.T) {
		cat := daggerok.NewCatalog()
		err := cat.AddInjectable(testtypes.NewConfigGreeter,
			daggerok.WithKeyed[map[string]any]("config"),
		)
		require.NoError(t, err)

		cfg := map[string]any{"msg": "hi"}
		c := daggerok.New(testtypes.Scope).
			WithDiscovery(cat).
			Register("config", cfg)

		err = c.Initialize()
		require.NoError(t, err)

		g, ok, err := daggerok.Bean[testtypes.Greeter](c)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "hi", g.Greet())

		// The greeter holds the registered map, not a copy
		cfg["msg"] = "changed"
		assert.Equal(t, "changed", g.Greet())
	})

	t.Run("nested dependencies in any discovery order", func(t *testing.T) {
		ctors := []any{
			testtypes.NewTop,
			testtypes.NewOuter,
			testtypes.NewService,
			testtypes.NewConfigGreeter,
		}

		for _, order := range permutations(len(ctors)) {
			cat := newCatalog(t, testtypes.TypeClockPtr)
			for _, i := range order {
				var opts []daggerok.Option
				if i == 3 {
					opts = append(opts, daggerok.WithKeyed[map[string]any]("config"))
				}
				require.NoError(t, cat.AddInjectable(ctors[i], opts...))
			}

			c := daggerok.New(testtypes.Scope).
				WithDiscovery(cat).
				Register("config", map[string]any{"msg": "hi"})

			err := c.Initialize()
			require.NoError(t, err, "order %v", order)

			report := c.Report()
			assert.True(t, report.Complete(), "order %v", order)
			assert.LessOrEqual(t, report.Passes, len(ctors), "order %v", order)

			top := daggerok.MustBean[*testtypes.Top](c)
			clock := daggerok.MustBean[*testtypes.Clock](c)
			assert.Same(t, clock, top.Clock)
			assert.Same(t, clock, top.Outer.Service.Clock)
			assert.Same(t, daggerok.MustBean[*testtypes.Outer](c), top.Outer)
		}
	})

	t.Run("manual bean takes precedence", func(t *testing.T) {
		calls := 0
		newService := func(c *testtypes.Clock) *testtypes.Service {
			calls++
			return testtypes.NewService(c)
		}

		for _, order := range permutations(2) {
			cat := daggerok.NewCatalog()
			for _, i := range order {
				if i == 0 {
					require.NoError(t, cat.AddComponent(testtypes.TypeClockPtr))
				} else {
					require.NoError(t, cat.AddInjectable(newService))
				}
			}

			manual := &testtypes.Service{}
			c := daggerok.New(testtypes.Scope).WithDiscovery(cat)
			daggerok.Provide(c, manual)

			err := c.Initialize()
			require.NoError(t, err)

			svc := daggerok.MustBean[*testtypes.Service](c)
			assert.Same(t, manual, svc)
			assert.Nil(t, svc.Clock)
		}

		assert.Equal(t, 0, calls)
	})

	t.Run("zero value component created once", func(t *testing.T) {
		calls := 0
		newClock := func() *testtypes.Clock {
			calls++
			return &testtypes.Clock{Now: 42}
		}

		cat := daggerok.NewCatalog()
		require.NoError(t, cat.AddComponent(testtypes.TypeClockPtr))
		require.NoError(t, cat.AddComponent(testtypes.TypeClockPtr, daggerok.InScope(testtypes.Scope+"/other")))
		require.NoError(t, cat.AddInjectable(newClock))

		c := daggerok.New(testtypes.Scope, testtypes.Scope+"/other").WithDiscovery(cat)
		err := c.Initialize()
		require.NoError(t, err)

		assert.Equal(t, 1, calls)
		assert.Equal(t, 1, c.Report().Created)
		assert.Equal(t, 42, daggerok.MustBean[*testtypes.Clock](c).Now)
	})

	t.Run("parameter created on demand", func(t *testing.T) {
		cat := daggerok.NewCatalog()
		require.NoError(t, cat.AddInjectable(testtypes.NewService))

		c := daggerok.New(testtypes.Scope).WithDiscovery(cat)
		err := c.Initialize()
		require.NoError(t, err)

		svc := daggerok.MustBean[*testtypes.Service](c)
		assert.NotNil(t, svc.Clock)
		assert.Same(t, daggerok.MustBean[*testtypes.Clock](c), svc.Clock)
	})

	t.Run("dependency cycle", func(t *testing.T) {
		cat := daggerok.NewCatalog()
		require.NoError(t, cat.AddInjectable(testtypes.NewChicken))
		require.NoError(t, cat.AddInjectable(testtypes.NewEgg))

		c := daggerok.New(testtypes.Scope).WithDiscovery(cat)
		err := c.Initialize()
		require.NoError(t, err)

		report := c.Report()
		assert.False(t, report.Complete())
		assert.Equal(t, 2, report.Passes)
		assert.Equal(t, []string{
			daggerok.KeyFor[*testtypes.Chicken](),
			daggerok.KeyFor[*testtypes.Egg](),
		}, report.Unresolved)

		_, ok, err := daggerok.Bean[*testtypes.Chicken](c)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unsatisfied interface", func(t *testing.T) {
		cat := daggerok.NewCatalog()
		require.NoError(t, cat.AddInjectable(testtypes.NewLonely))

		c := daggerok.New(testtypes.Scope).
			WithDiscovery(cat).
			FailOnInjectNullRef(true).
			FailOnBeanCreationError(true)

		err := c.Initialize()
		require.NoError(t, err)
		assert.Equal(t, []string{daggerok.KeyFor[*testtypes.Lonely]()}, c.Report().Unresolved)
	})

	t.Run("context registered after resolution", func(t *testing.T) {
		cat := newCatalog(t, testtypes.TypeClockPtr)
		c := daggerok.New(testtypes.Scope).WithDiscovery(cat)

		_, ok := c.GetBean(reflect.TypeFor[*daggerok.Context]())
		assert.False(t, ok)

		require.NoError(t, c.Initialize())

		got, ok, err := daggerok.Bean[*daggerok.Context](c)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Same(t, c, got)
	})

	t.Run("no search scopes", func(t *testing.T) {
		c := daggerok.New()
		err := c.Initialize()
		testutils.LogError(t, err)

		assert.ErrorIs(t, err, daggerok.ErrConfiguration)
		assert.ErrorContains(t, err, "list of search scopes may not be empty")
		assert.Equal(t, daggerok.Unconfigured, c.State())
	})

	t.Run("called twice", func(t *testing.T) {
		cat := newCatalog(t, testtypes.TypeClockPtr)
		c := daggerok.New(testtypes.Scope).WithDiscovery(cat)
		require.NoError(t, c.Initialize())

		err := c.Initialize()
		testutils.LogError(t, err)
		assert.ErrorIs(t, err, daggerok.ErrConfiguration)
		assert.Equal(t, daggerok.Ready, c.State())
	})

	t.Run("configuration errors", func(t *testing.T) {
		c := daggerok.New(testtypes.Scope).
			WithComponentMarker("").
			Register("", 1)

		err := c.Err()
		testutils.LogError(t, err)
		assert.ErrorIs(t, err, daggerok.ErrConfiguration)
		assert.ErrorContains(t, err, "marker is empty")
		assert.ErrorContains(t, err, "key is empty")

		err = c.Initialize()
		assert.ErrorIs(t, err, daggerok.ErrConfiguration)
		assert.NotEqual(t, daggerok.Ready, c.State())
	})

	t.Run("type mismatch in parameter", func(t *testing.T) {
		cat := daggerok.NewCatalog()
		require.NoError(t, cat.AddInjectable(testtypes.NewService))

		c := daggerok.New(testtypes.Scope).
			WithDiscovery(cat).
			Register(daggerok.KeyFor[*testtypes.Clock](), "not a clock")

		err := c.Initialize()
		testutils.LogError(t, err)
		assert.ErrorIs(t, err, daggerok.ErrTypeMismatch)
		assert.Equal(t, daggerok.Failed, c.State())
	})
}

func TestContext_Initialize_retryBudget(t *testing.T) {
	// Two parameter groups: Service, Greeter, Chicken and Egg take one parameter,
	// Top and Outer take two. Top is looked at before Outer is created, so the chain
	// needs two passes with progress. The cycle then costs one full budget of passes
	// without progress.
	cat := newCatalog(t, testtypes.TypeClockPtr)
	require.NoError(t, cat.AddInjectable(testtypes.NewTop))
	require.NoError(t, cat.AddInjectable(testtypes.NewOuter))
	require.NoError(t, cat.AddInjectable(testtypes.NewService))
	require.NoError(t, cat.AddInjectable(testtypes.NewConfigGreeter, daggerok.WithKeyed[map[string]any]("config")))
	require.NoError(t, cat.AddInjectable(testtypes.NewChicken))
	require.NoError(t, cat.AddInjectable(testtypes.NewEgg))

	c := daggerok.New(testtypes.Scope).
		WithDiscovery(cat).
		Register("config", map[string]any{"msg": "hi"})
	require.NoError(t, c.Initialize())

	const parameterized = 6
	const progressPasses = 2

	report := c.Report()
	assert.Equal(t, progressPasses+parameterized, report.Passes)
	assert.Equal(t, []string{
		daggerok.KeyFor[*testtypes.Chicken](),
		daggerok.KeyFor[*testtypes.Egg](),
	}, report.Unresolved)

	top := daggerok.MustBean[*testtypes.Top](c)
	assert.Same(t, daggerok.MustBean[*testtypes.Outer](c), top.Outer)
}

func TestContext_Initialize_reportCounts(t *testing.T) {
	t.Run("nil bean counted once", func(t *testing.T) {
		calls := 0
		newService := func(*testtypes.Clock) *testtypes.Service {
			calls++
			return nil
		}

		cat := newCatalog(t, testtypes.TypeClockPtr)
		require.NoError(t, cat.AddInjectable(newService))
		require.NoError(t, cat.AddInjectable(testtypes.NewChicken))
		require.NoError(t, cat.AddInjectable(testtypes.NewEgg))

		c := daggerok.New(testtypes.Scope).WithDiscovery(cat)
		require.NoError(t, c.Initialize())

		report := c.Report()
		assert.Equal(t, 3, report.Passes)
		assert.Equal(t, 3, calls)
		assert.Equal(t, 2, report.Created)
		assert.True(t, c.Registry().Contains(daggerok.KeyFor[*testtypes.Service]()))
	})

	t.Run("creation error suppressed once", func(t *testing.T) {
		calls := 0
		newBroken := func(*testtypes.Clock) (*testtypes.Broken, error) {
			calls++
			return nil, testtypes.ErrBroken
		}

		cat := newCatalog(t, testtypes.TypeClockPtr)
		require.NoError(t, cat.AddInjectable(newBroken))
		require.NoError(t, cat.AddInjectable(testtypes.NewChicken))
		require.NoError(t, cat.AddInjectable(testtypes.NewEgg))

		c := daggerok.New(testtypes.Scope).WithDiscovery(cat)
		require.NoError(t, c.Initialize())

		report := c.Report()
		assert.Greater(t, calls, 1)
		assert.Equal(t, 1, report.Created)
		require.Len(t, report.Suppressed, 1)
		assert.ErrorIs(t, report.Err(), testtypes.ErrBroken)
	})
}

func TestContext_Initialize_nilBean(t *testing.T) {
	t.Run("registered", func(t *testing.T) {
		cat := daggerok.NewCatalog()
		require.NoError(t, cat.AddInjectable(testtypes.NewNothing))

		c := daggerok.New(testtypes.Scope).WithDiscovery(cat)
		require.NoError(t, c.Initialize())

		bean, ok := c.GetBeanByKey(daggerok.KeyFor[*testtypes.Nothing]())
		assert.True(t, ok)
		assert.Nil(t, bean)
	})

	t.Run("does not satisfy a dependency", func(t *testing.T) {
		cat := daggerok.NewCatalog()
		require.NoError(t, cat.AddInjectable(func() *testtypes.Clock { return nil }))
		require.NoError(t, cat.AddInjectable(testtypes.NewService))

		c := daggerok.New(testtypes.Scope).WithDiscovery(cat)
		require.NoError(t, c.Initialize())

		assert.Equal(t, []string{daggerok.KeyFor[*testtypes.Service]()}, c.Report().Unresolved)
	})

	t.Run("fail on inject null ref", func(t *testing.T) {
		cat := daggerok.NewCatalog()
		require.NoError(t, cat.AddInjectable(testtypes.NewNothing))

		c := daggerok.New(testtypes.Scope).
			WithDiscovery(cat).
			FailOnInjectNullRef(true)

		err := c.Initialize()
		testutils.LogError(t, err)
		assert.ErrorIs(t, err, daggerok.ErrBeanNotFound)

		var nf *daggerok.BeanNotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, daggerok.KeyFor[*testtypes.Nothing](), nf.Key)
		assert.Equal(t, daggerok.Failed, c.State())

		assert.False(t, c.Registry().Contains(nf.Key))
	})
}

func TestContext_Initialize_creationError(t *testing.T) {
	tests := []struct {
		name  string
		fn    any
		key   string
		cause string
	}{
		{
			name:  "error result",
			fn:    testtypes.NewBroken,
			key:   daggerok.KeyFor[*testtypes.Broken](),
			cause: "broken on purpose",
		},
		{
			name:  "panic",
			fn:    testtypes.NewPanicky,
			key:   daggerok.KeyFor[*testtypes.Panicky](),
			cause: "panicky on purpose",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name+" suppressed", func(t *testing.T) {
			cat := daggerok.NewCatalog()
			require.NoError(t, cat.AddInjectable(tt.fn))

			c := daggerok.New(testtypes.Scope).WithDiscovery(cat)
			require.NoError(t, c.Initialize())

			assert.False(t, c.Registry().Contains(tt.key))

			report := c.Report()
			require.Len(t, report.Suppressed, 1)
			assert.ErrorIs(t, report.Err(), daggerok.ErrCreationFailed)
			assert.ErrorContains(t, report.Err(), tt.cause)
		})

		t.Run(tt.name+" fails", func(t *testing.T) {
			cat := daggerok.NewCatalog()
			require.NoError(t, cat.AddInjectable(tt.fn))

			c := daggerok.New(testtypes.Scope).
				WithDiscovery(cat).
				FailOnBeanCreationError(true)

			err := c.Initialize()
			testutils.LogError(t, err)
			assert.ErrorIs(t, err, daggerok.ErrCreationFailed)
			assert.ErrorContains(t, err, tt.cause)

			var ce *daggerok.CreationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.key, ce.Key)
		})

		t.Run(tt.name+" reported as missing bean", func(t *testing.T) {
			cat := daggerok.NewCatalog()
			require.NoError(t, cat.AddInjectable(tt.fn))

			c := daggerok.New(testtypes.Scope).
				WithDiscovery(cat).
				FailOnInjectNullRef(true)

			err := c.Initialize()
			testutils.LogError(t, err)
			assert.ErrorIs(t, err, daggerok.ErrBeanNotFound)
			assert.ErrorIs(t, err, daggerok.ErrCreationFailed)
		})
	}

	t.Run("error result keeps cause", func(t *testing.T) {
		cat := daggerok.NewCatalog()
		require.NoError(t, cat.AddInjectable(testtypes.NewBroken))

		c := daggerok.New(testtypes.Scope).
			WithDiscovery(cat).
			FailOnBeanCreationError(true)

		err := c.Initialize()
		assert.ErrorIs(t, err, testtypes.ErrBroken)
	})
}

func TestContext_Initialize_discoveryError(t *testing.T) {
	errBad := errors.New("bad scope")

	newProvider := func(queried *[]string) daggerok.ProviderFuncs {
		return daggerok.ProviderFuncs{
			Injects: func(scope string, _ daggerok.Marker) ([]*daggerok.Constructor, error) {
				*queried = append(*queried, scope)
				if scope == "bad" {
					return nil, errBad
				}
				return nil, nil
			},
			Components: func(scope string, _ daggerok.Marker) ([]reflect.Type, error) {
				if scope == "bad" {
					return nil, errBad
				}
				return []reflect.Type{testtypes.TypeClockPtr}, nil
			},
		}
	}

	t.Run("skipped", func(t *testing.T) {
		var queried []string
		c := daggerok.New("bad", "good").WithDiscovery(newProvider(&queried))

		require.NoError(t, c.Initialize())
		assert.Equal(t, []string{"bad", "good"}, queried)

		report := c.Report()
		require.Len(t, report.Suppressed, 2)
		assert.ErrorIs(t, report.Err(), daggerok.ErrDiscoveryFailed)
		assert.ErrorIs(t, report.Err(), errBad)

		_, ok, err := daggerok.Bean[*testtypes.Clock](c)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("fails", func(t *testing.T) {
		var queried []string
		c := daggerok.New("bad", "good").
			WithDiscovery(newProvider(&queried)).
			FailOnUnknownDiscoveryErrors(true)

		err := c.Initialize()
		testutils.LogError(t, err)
		assert.ErrorIs(t, err, daggerok.ErrDiscoveryFailed)
		assert.ErrorIs(t, err, errBad)
		assert.Equal(t, []string{"bad"}, queried)

		var de *daggerok.DiscoveryError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "bad", de.Scope)
		assert.Equal(t, daggerok.Failed, c.State())
	})

	t.Run("scope not found", func(t *testing.T) {
		cat := newCatalog(t, testtypes.TypeClockPtr)
		c := daggerok.New("github.com/acme/unknown").
			WithDiscovery(cat).
			FailOnUnknownDiscoveryErrors(true)

		err := c.Initialize()
		testutils.LogError(t, err)
		assert.ErrorIs(t, err, daggerok.ErrDiscoveryFailed)
		assert.ErrorIs(t, err, daggerok.ErrScopeNotFound)
	})
}

func TestContext_configurationFrozen(t *testing.T) {
	cat := newCatalog(t, testtypes.TypeClockPtr)
	c := daggerok.New(testtypes.Scope).WithDiscovery(cat)
	require.NoError(t, c.Initialize())
	require.NoError(t, c.Err())

	c.WithSearchScopes("github.com/acme").
		WithInjectMarker("other").
		FailOnInjectNullRef(true)

	err := c.Err()
	testutils.LogError(t, err)
	assert.ErrorIs(t, err, daggerok.ErrConfiguration)
	assert.ErrorContains(t, err, "configuration is frozen")
	assert.Equal(t, daggerok.Ready, c.State())

	// Registration stays open
	c.Register("late", 1)
	bean, ok := c.GetBeanByKey("late")
	assert.True(t, ok)
	assert.Equal(t, 1, bean)
}

func TestContext_WithSearchTypes(t *testing.T) {
	cat := newCatalog(t, testtypes.TypeClockPtr)
	c := daggerok.New().
		WithSearchTypes(testtypes.TypeService).
		WithDiscovery(cat)

	require.NoError(t, c.Initialize())

	_, ok, err := daggerok.Bean[*testtypes.Clock](c)
	assert.NoError(t, err)
	assert.True(t, ok)

	err = daggerok.New().WithSearchTypes(nil).Err()
	assert.ErrorIs(t, err, daggerok.ErrConfiguration)
}

func TestContext_markers(t *testing.T) {
	cat := daggerok.NewCatalog()
	require.NoError(t, cat.AddComponent(testtypes.TypeClockPtr, daggerok.WithMarker("prototype")))
	require.NoError(t, cat.AddInjectable(testtypes.NewService, daggerok.WithMarker("autowired")))

	t.Run("default markers", func(t *testing.T) {
		c := daggerok.New(testtypes.Scope).WithDiscovery(cat)
		require.NoError(t, c.Initialize())
		assert.Equal(t, 0, c.Report().Discovered)
	})

	t.Run("custom markers", func(t *testing.T) {
		c := daggerok.New(testtypes.Scope).
			WithDiscovery(cat).
			WithComponentMarker("prototype").
			WithInjectMarker("autowired")
		require.NoError(t, c.Initialize())

		assert.Equal(t, 2, c.Report().Discovered)
		svc := daggerok.MustBean[*testtypes.Service](c)
		assert.Same(t, daggerok.MustBean[*testtypes.Clock](c), svc.Clock)
	})
}

func TestContext_WithConfig(t *testing.T) {
	cat := daggerok.NewCatalog()
	require.NoError(t, cat.AddInjectable(testtypes.NewBroken, daggerok.WithMarker("autowired")))

	cfg := &config.Config{
		SearchScopes:            []string{testtypes.Scope},
		InjectMarker:            "autowired",
		FailOnBeanCreationError: true,
	}

	c := daggerok.New().WithDiscovery(cat).WithConfig(cfg)
	require.NoError(t, c.Err())

	err := c.Initialize()
	testutils.LogError(t, err)
	assert.ErrorIs(t, err, daggerok.ErrCreationFailed)

	err = daggerok.New().WithConfig(nil).Err()
	assert.ErrorIs(t, err, daggerok.ErrConfiguration)
}

func TestContext_WithDiscovery(t *testing.T) {
	err := daggerok.New(testtypes.Scope).WithDiscovery(nil).Err()
	testutils.LogError(t, err)
	assert.ErrorIs(t, err, daggerok.ErrConfiguration)
}

func TestContext_RegisterType(t *testing.T) {
	c := daggerok.New(testtypes.Scope)

	clock := &testtypes.Clock{}
	c.RegisterType(testtypes.TypeClockPtr, clock)
	require.NoError(t, c.Err())

	bean, ok := c.GetBean(testtypes.TypeClockPtr)
	assert.True(t, ok)
	assert.Same(t, clock, bean)

	c.RegisterType(testtypes.TypeService, clock)
	err := c.Err()
	testutils.LogError(t, err)
	assert.ErrorIs(t, err, daggerok.ErrTypeMismatch)
	assert.False(t, c.Registry().Contains(daggerok.KeyOf(testtypes.TypeService)))
}

func TestBean(t *testing.T) {
	c := daggerok.New(testtypes.Scope)

	t.Run("missing", func(t *testing.T) {
		svc, ok, err := daggerok.Bean[*testtypes.Service](c)
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, svc)
	})

	t.Run("type mismatch", func(t *testing.T) {
		c.Register(daggerok.KeyFor[*testtypes.Clock](), "not a clock")

		_, ok, err := daggerok.Bean[*testtypes.Clock](c)
		testutils.LogError(t, err)
		assert.True(t, ok)
		assert.ErrorIs(t, err, daggerok.ErrTypeMismatch)

		var tm *daggerok.TypeMismatchError
		require.ErrorAs(t, err, &tm)
		assert.Equal(t, testtypes.TypeClockPtr, tm.Want)
		assert.Equal(t, reflect.TypeFor[string](), tm.Got)
	})

	t.Run("by key", func(t *testing.T) {
		c.Register("config", map[string]any{"msg": "hi"})

		cfg, ok, err := daggerok.BeanAs[map[string]any](c, "config")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "hi", cfg["msg"])

		_, _, err = c.GetBeanAs("config", nil)
		assert.ErrorIs(t, err, daggerok.ErrConfiguration)
	})

	t.Run("named map is not a map", func(t *testing.T) {
		c.Register("settings", testtypes.Settings{"msg": "hi"})

		var err error
		var ok bool
		assert.NotPanics(t, func() {
			_, ok, err = daggerok.BeanAs[map[string]any](c, "settings")
		})
		testutils.LogError(t, err)
		assert.True(t, ok)
		assert.ErrorIs(t, err, daggerok.ErrTypeMismatch)

		settings, ok, err := daggerok.BeanAs[testtypes.Settings](c, "settings")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "hi", settings["msg"])
	})

	t.Run("nil bean", func(t *testing.T) {
		daggerok.Provide[*testtypes.Service](c, nil)

		svc, ok, err := daggerok.Bean[*testtypes.Service](c)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Nil(t, svc)
	})

	t.Run("must bean panics", func(t *testing.T) {
		assert.Panics(t, func() {
			daggerok.MustBean[*testtypes.Top](c)
		})
	})
}

// newCatalog creates a catalog with the given component types.
func newCatalog(t *testing.T, types ...reflect.Type) *daggerok.Catalog {
	t.Helper()

	cat := daggerok.NewCatalog()
	for _, typ := range types {
		require.NoError(t, cat.AddComponent(typ))
	}
	return cat
}

// permutations returns every ordering of the indexes 0 to n-1.
func permutations(n int) [][]int {
	if n == 0 {
		return [][]int{{}}
	}

	var all [][]int
	for _, p := range permutations(n - 1) {
		for i := 0; i <= len(p); i++ {
			perm := make([]int, 0, n)
			perm = append(perm, p[:i]...)
			perm = append(perm, n-1)
			perm = append(perm, p[i:]...)
			all = append(all, perm)
		}
	}
	return all
}
