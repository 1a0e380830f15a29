package manager

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/filterware/inputfilter/filter"
	"github.com/filterware/inputfilter/input"
	"github.com/filterware/inputfilter/inputfilter"
	"github.com/filterware/inputfilter/service"
	"github.com/filterware/inputfilter/validator"
)

// initCounting is an input filter that counts its initialization hook
// invocations.
type initCounting struct {
	*inputfilter.Base
	inits int
}

func newInitCounting() *initCounting {
	return &initCounting{Base: inputfilter.New()}
}

func (s *initCounting) Init() error {
	s.inits++
	return nil
}

// initFailing is an input filter whose initialization hook always fails.
type initFailing struct {
	*inputfilter.Base
}

func (s *initFailing) Init() error {
	return errors.New("init failed")
}

// closeCounting is an input filter that counts Close calls.
type closeCounting struct {
	*inputfilter.Base
	closed int
}

func (s *closeCounting) Close() error {
	s.closed++
	return nil
}

func TestRegisterRejectsInvalidService(t *testing.T) {
	r := require.New(t)
	pm := New()

	err := pm.Register("bogus", "not a filter")
	r.ErrorIs(err, service.ErrInvalidService)
	r.False(pm.Has("bogus"))

	err = pm.Register("bogus", struct{}{})
	r.ErrorIs(err, service.ErrInvalidService)
	r.False(pm.Has("bogus"))
}

func TestRegisterAcceptsBothCapabilities(t *testing.T) {
	r := require.New(t)
	pm := New()

	r.NoError(pm.Register("single", input.New("email")))
	r.NoError(pm.Register("composite", inputfilter.New()))
	r.True(pm.Has("single"))
	r.True(pm.Has("composite"))
}

func TestWithServiceSeedsInstance(t *testing.T) {
	r := require.New(t)

	svc := inputfilter.New()
	pm := New(WithService("custom", svc))

	r.True(pm.Has("custom"))
	resolved, err := pm.Get("custom")
	r.NoError(err)
	r.Same(svc, resolved)
}

func TestWithServiceRejectsInvalidService(t *testing.T) {
	require.Panics(t, func() {
		New(WithService("bogus", "not a filter"))
	})
}

func TestRegisterRollsBackOnInitFailure(t *testing.T) {
	r := require.New(t)
	pm := New()

	err := pm.Register("failing", &initFailing{Base: inputfilter.New()})
	r.Error(err)
	r.False(pm.Has("failing"))

	_, err = pm.Get("failing")
	r.ErrorIs(err, service.ErrServiceNotFound)
}

func TestDefaultAliasesResolveToExpectedTypes(t *testing.T) {
	r := require.New(t)
	pm := New()

	for _, alias := range []string{"inputfilter", "inputFilter", "InputFilter"} {
		svc, err := pm.Get(alias)
		r.NoError(err, "alias %q", alias)
		r.IsType(&inputfilter.Base{}, svc, "alias %q", alias)
	}
	for _, alias := range []string{"collection", "Collection"} {
		svc, err := pm.Get(alias)
		r.NoError(err, "alias %q", alias)
		r.IsType(&inputfilter.Collection{}, svc, "alias %q", alias)
	}
}

func TestResolvedBaseIsWiredToManager(t *testing.T) {
	r := require.New(t)
	pm := New()

	svc, err := pm.Get("inputfilter")
	r.NoError(err)
	base := svc.(*inputfilter.Base)
	r.Same(pm, base.Factory().InputFilterManager())

	// without a parent locator the factory keeps the default registries
	r.Same(filter.Default, base.Factory().FilterRegistry())
	r.Same(validator.Default, base.Factory().ValidatorRegistry())
}

func TestResolvedBaseUsesParentRegistries(t *testing.T) {
	r := require.New(t)

	filters := filter.NewRegistry()
	validators := validator.NewRegistry()
	parent := service.NewContainer()
	parent.MustRegister(FilterRegistryService, filters)
	parent.MustRegister(ValidatorRegistryService, validators)

	pm := New(WithParent(parent))
	svc, err := pm.Get("inputfilter")
	r.NoError(err)

	base := svc.(*inputfilter.Base)
	r.Same(pm, base.Factory().InputFilterManager())
	r.Same(filters, base.Factory().FilterRegistry())
	r.Same(validators, base.Factory().ValidatorRegistry())
}

func TestInitHookRunsOnRegisterAndOnResolve(t *testing.T) {
	r := require.New(t)
	pm := New()

	svc := newInitCounting()
	r.NoError(pm.Register("counting", svc))
	r.Equal(1, svc.inits)

	resolved, err := pm.Get("counting")
	r.NoError(err)
	r.Same(svc, resolved)
	r.Equal(2, svc.inits)
}

func TestInitHookRunsOnConstructedServices(t *testing.T) {
	r := require.New(t)
	pm := New(WithFactoryFn("counting", func(*PluginManager) (any, error) {
		return newInitCounting(), nil
	}))

	svc, err := pm.Get("counting")
	r.NoError(err)
	r.Equal(1, svc.(*initCounting).inits)
}

func TestServicesAreNotSharedByDefault(t *testing.T) {
	r := require.New(t)
	pm := New()

	first, err := pm.Get("inputfilter")
	r.NoError(err)
	second, err := pm.Get("inputfilter")
	r.NoError(err)
	r.NotSame(first, second)
}

func TestSharedOverrideCachesInstances(t *testing.T) {
	r := require.New(t)
	pm := New(WithShared("inputfilter"))

	first, err := pm.Get("inputfilter")
	r.NoError(err)
	second, err := pm.Get("inputFilter")
	r.NoError(err)
	r.Same(first, second)
}

func TestConcurrentSharedGetsReturnSameInstance(t *testing.T) {
	r := require.New(t)
	pm := New(WithShared("inputfilter"))

	const resolvers = 16
	results := make([]any, resolvers)
	errs := make([]error, resolvers)

	var wg sync.WaitGroup
	for i := range resolvers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = pm.Get("inputfilter")
		}()
	}
	wg.Wait()

	for i := range resolvers {
		r.NoError(errs[i])
		r.Same(results[0], results[i])
	}
}

func TestGetUnknownService(t *testing.T) {
	pm := New()
	_, err := pm.Get("no-such-service")
	require.ErrorIs(t, err, service.ErrServiceNotFound)
}

func TestFactoryFailureSurfacesAsNotFound(t *testing.T) {
	pm := New(WithFactoryFn("broken", func(*PluginManager) (any, error) {
		return nil, service.ErrServiceNotFound
	}))
	_, err := pm.Get("broken")
	require.ErrorIs(t, err, service.ErrServiceNotFound)
}

func TestConstructedInvalidServiceIsRejected(t *testing.T) {
	pm := New(WithFactoryFn("bogus", func(*PluginManager) (any, error) {
		return 42, nil
	}))
	_, err := pm.Get("bogus")
	require.ErrorIs(t, err, service.ErrInvalidService)
}

func TestTypedAccessors(t *testing.T) {
	r := require.New(t)
	pm := New()
	r.NoError(pm.Register("single", input.New("email")))

	f, err := pm.GetInputFilter("inputfilter")
	r.NoError(err)
	r.NotNil(f)

	_, err = pm.GetInputFilter("single")
	r.ErrorIs(err, service.ErrInvalidService)

	in, err := pm.GetInput("single")
	r.NoError(err)
	r.Equal("email", in.Name())

	_, err = pm.GetInput("inputfilter")
	r.ErrorIs(err, service.ErrInvalidService)
}

func TestPopulateFactory(t *testing.T) {
	r := require.New(t)
	pm := New()

	base := inputfilter.New()
	r.Nil(base.Factory().InputFilterManager())

	pm.PopulateFactory(base)
	r.Same(pm, base.Factory().InputFilterManager())

	// values without a factory accessor are left alone
	pm.PopulateFactory(input.New("email"))
}

func TestCloseClosesServices(t *testing.T) {
	r := require.New(t)
	pm := New()

	svc := &closeCounting{Base: inputfilter.New()}
	r.NoError(pm.Register("closable", svc))
	r.NoError(pm.Close(t.Context()))
	r.Equal(1, svc.closed)
}

func TestCustomAlias(t *testing.T) {
	r := require.New(t)
	pm := New(WithAlias("form", "inputfilter"))

	svc, err := pm.Get("form")
	r.NoError(err)
	r.IsType(&inputfilter.Base{}, svc)
}
