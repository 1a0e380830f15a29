// Package manager provides the input-filter plugin manager: a keyed,
// capability-constrained service registry layered on the generic locator
// contract. It pre-registers the default input filter services, runs
// initialization hooks on registered and resolved instances, and threads
// the filter and validator registries into resolved factories.
package manager

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/sync/errgroup"

	"github.com/filterware/inputfilter/filter"
	"github.com/filterware/inputfilter/input"
	"github.com/filterware/inputfilter/inputfilter"
	"github.com/filterware/inputfilter/service"
	"github.com/filterware/inputfilter/validator"
)

// Service names under which an enclosing locator exposes the chain provider
// collaborators. When present, resolved factories reference these instead of
// the package defaults.
const (
	FilterRegistryService    = "FilterRegistry"
	ValidatorRegistryService = "ValidatorRegistry"
)

// Default alias table. Aliases resolve to the canonical factory keys; the
// casing variants mirror the lookups historically used by callers.
const (
	CollectionServiceName = "collection"
)

var defaultAliases = map[string]string{
	"inputFilter": inputfilter.DefaultServiceName,
	"InputFilter": inputfilter.DefaultServiceName,
	"Collection":  CollectionServiceName,
}

// FactoryFunc constructs a service. The manager passes itself so factories
// can resolve collaborators.
type FactoryFunc func(m *PluginManager) (any, error)

// PluginManager is a capability-constrained registry of input filter
// services. Every value registered with or resolved from the manager must
// implement input.Input or inputfilter.InputFilter; anything else is
// rejected with service.ErrInvalidService.
//
// Factory-backed services are NOT shared by default: each Get constructs a
// fresh instance. Explicitly registered instances are always returned
// as-is.
type PluginManager struct {
	mu     sync.RWMutex
	logger *slog.Logger

	// parent is the enclosing locator collaborators are looked up in. May
	// be nil.
	parent service.Locator

	aliases   map[string]string
	factories map[string]FactoryFunc
	instances map[string]any

	sharedByDefault bool
	shared          map[string]bool
	// cache holds instances of keys resolved under a sharing override.
	cache *xsync.Map[string, any]
}

var _ service.Registry = &PluginManager{}

// Option configures a PluginManager.
type Option func(*PluginManager)

// WithParent sets the enclosing locator used to look up the filter and
// validator registry collaborators.
func WithParent(parent service.Locator) Option {
	return func(m *PluginManager) {
		m.parent = parent
	}
}

// WithLogger replaces the default slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *PluginManager) {
		m.logger = logger
	}
}

// WithFactoryFn registers an additional factory under the given name.
func WithFactoryFn(name string, fn FactoryFunc) Option {
	return func(m *PluginManager) {
		m.factories[name] = fn
	}
}

// WithService registers an instance under name at construction time. The
// value must satisfy the capability constraint; invalid values panic, like
// MustRegister. The initialization hook runs on resolution, not here.
func WithService(name string, svc any) Option {
	return func(m *PluginManager) {
		if err := m.ValidateService(svc); err != nil {
			panic(fmt.Errorf("cannot register service %q: %w", name, err))
		}
		m.instances[m.canonicalLocked(name)] = svc
	}
}

// WithAlias adds an alias for an existing factory or service name.
func WithAlias(alias, target string) Option {
	return func(m *PluginManager) {
		m.aliases[alias] = target
	}
}

// WithShared marks a single key as shared: its first resolution is cached
// and returned on subsequent Gets.
func WithShared(name string) Option {
	return func(m *PluginManager) {
		m.shared[name] = true
	}
}

// WithSharedByDefault overrides the manager-wide sharing policy. The
// default is false: every resolution constructs a fresh instance.
func WithSharedByDefault(shared bool) Option {
	return func(m *PluginManager) {
		m.sharedByDefault = shared
	}
}

// New creates a PluginManager with the default aliases and factories
// pre-registered.
func New(opts ...Option) *PluginManager {
	m := &PluginManager{
		logger:    slog.Default(),
		aliases:   make(map[string]string),
		factories: make(map[string]FactoryFunc),
		instances: make(map[string]any),
		shared:    make(map[string]bool),
		cache:     xsync.NewMap[string, any](),
	}
	for alias, target := range defaultAliases {
		m.aliases[alias] = target
	}
	m.factories[inputfilter.DefaultServiceName] = func(m *PluginManager) (any, error) {
		return inputfilter.New(), nil
	}
	m.factories[CollectionServiceName] = func(m *PluginManager) (any, error) {
		return inputfilter.NewCollection(), nil
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ValidateService checks the capability constraint: the value must be an
// input.Input or an inputfilter.InputFilter.
func (m *PluginManager) ValidateService(svc any) error {
	switch svc.(type) {
	case input.Input, inputfilter.InputFilter:
		return nil
	default:
		return fmt.Errorf("%w: %T does not implement input.Input or inputfilter.InputFilter",
			service.ErrInvalidService, svc)
	}
}

// Register stores an instance under name. The value must satisfy the
// capability constraint; if it implements Initializable its hook runs
// immediately. Registered instances take precedence over factories and are
// always returned as-is by Get.
func (m *PluginManager) Register(name string, svc any) error {
	if err := m.ValidateService(svc); err != nil {
		return fmt.Errorf("cannot register service %q: %w", name, err)
	}

	m.mu.Lock()
	canonical := m.canonicalLocked(name)
	if _, exists := m.instances[canonical]; exists {
		m.mu.Unlock()
		return fmt.Errorf("service %q is already registered", name)
	}
	m.instances[canonical] = svc
	m.mu.Unlock()

	m.logger.DebugContext(context.Background(), "registered input filter service", "name", name, "type", fmt.Sprintf("%T", svc))

	if err := m.initialize(svc); err != nil {
		m.mu.Lock()
		delete(m.instances, canonical)
		m.mu.Unlock()
		return fmt.Errorf("failed to initialize service %q: %w", name, err)
	}
	return nil
}

// MustRegister is Register, panicking on error.
func (m *PluginManager) MustRegister(name string, svc any) {
	if err := m.Register(name, svc); err != nil {
		panic(err)
	}
}

// Has reports whether name resolves to a registered instance or factory.
func (m *PluginManager) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name = m.canonicalLocked(name)
	if _, exists := m.instances[name]; exists {
		return true
	}
	_, exists := m.factories[name]
	return exists
}

// Get resolves name to a service instance.
//
// Resolution order: alias -> explicitly registered instance -> shared cache
// -> factory construction. Constructed values are validated against the
// capability constraint, auto-wired (see PopulateFactory) and
// init-hooked. The initialization hook runs on every Get, so a value that
// was registered and is then resolved observes two invocations.
func (m *PluginManager) Get(name string) (any, error) {
	m.mu.RLock()
	canonical := m.canonicalLocked(name)
	instance, isInstance := m.instances[canonical]
	factoryFn, hasFactory := m.factories[canonical]
	m.mu.RUnlock()

	if isInstance {
		if err := m.initialize(instance); err != nil {
			return nil, fmt.Errorf("failed to initialize service %q: %w", name, err)
		}
		return instance, nil
	}

	if !hasFactory {
		return nil, fmt.Errorf("%w: %q", service.ErrServiceNotFound, name)
	}

	var svc any
	if m.isShared(canonical) {
		// first resolution wins; concurrent Gets of a shared key must
		// observe the same instance
		var constructErr error
		cached, _ := m.cache.LoadOrCompute(canonical, func() (any, bool) {
			built, err := m.construct(name, factoryFn)
			if err != nil {
				constructErr = err
				return nil, true
			}
			return built, false
		})
		if constructErr != nil {
			return nil, constructErr
		}
		svc = cached
	} else {
		built, err := m.construct(name, factoryFn)
		if err != nil {
			return nil, err
		}
		svc = built
	}

	if err := m.initialize(svc); err != nil {
		return nil, fmt.Errorf("failed to initialize service %q: %w", name, err)
	}

	m.logger.DebugContext(context.Background(), "resolved input filter service", "name", name, "type", fmt.Sprintf("%T", svc))
	return svc, nil
}

// construct runs the factory for name, checks the capability constraint and
// wires the result.
func (m *PluginManager) construct(name string, factoryFn FactoryFunc) (any, error) {
	svc, err := factoryFn(m)
	if err != nil {
		return nil, fmt.Errorf("%w: factory for %q failed: %w", service.ErrServiceNotFound, name, err)
	}
	if err := m.ValidateService(svc); err != nil {
		return nil, fmt.Errorf("cannot resolve service %q: %w", name, err)
	}
	m.PopulateFactory(svc)
	return svc, nil
}

// GetInputFilter resolves name and asserts the composite capability.
func (m *PluginManager) GetInputFilter(name string) (inputfilter.InputFilter, error) {
	svc, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	f, ok := svc.(inputfilter.InputFilter)
	if !ok {
		return nil, fmt.Errorf("%w: service %q is %T, not an input filter",
			service.ErrInvalidService, name, svc)
	}
	return f, nil
}

// GetInput resolves name and asserts the single-unit capability.
func (m *PluginManager) GetInput(name string) (input.Input, error) {
	svc, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	in, ok := svc.(input.Input)
	if !ok {
		return nil, fmt.Errorf("%w: service %q is %T, not an input",
			service.ErrInvalidService, name, svc)
	}
	return in, nil
}

// PopulateFactory wires this manager into any value exposing a factory
// accessor: the factory's manager reference is set to the manager, and the
// filter and validator registries are taken from the enclosing locator when
// it provides them.
func (m *PluginManager) PopulateFactory(svc any) {
	aware, ok := svc.(interface{ Factory() *inputfilter.Factory })
	if !ok {
		return
	}
	f := aware.Factory()
	f.SetInputFilterManager(m)

	if m.parent == nil {
		return
	}
	if m.parent.Has(FilterRegistryService) {
		if reg, err := m.parent.Get(FilterRegistryService); err == nil {
			if filters, ok := reg.(*filter.Registry); ok {
				f.SetFilterRegistry(filters)
			}
		}
	}
	if m.parent.Has(ValidatorRegistryService) {
		if reg, err := m.parent.Get(ValidatorRegistryService); err == nil {
			if validators, ok := reg.(*validator.Registry); ok {
				f.SetValidatorRegistry(validators)
			}
		}
	}
}

// Close shuts down all registered and cached instances that implement
// io.Closer, concurrently.
func (m *PluginManager) Close(ctx context.Context) error {
	m.mu.RLock()
	closers := make([]io.Closer, 0, len(m.instances))
	for _, svc := range m.instances {
		if closer, ok := svc.(io.Closer); ok {
			closers = append(closers, closer)
		}
	}
	m.mu.RUnlock()
	m.cache.Range(func(_ string, svc any) bool {
		if closer, ok := svc.(io.Closer); ok {
			closers = append(closers, closer)
		}
		return true
	})

	eg, _ := errgroup.WithContext(ctx)
	for _, closer := range closers {
		eg.Go(closer.Close)
	}
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("failed to close input filter services: %w", err)
	}
	return nil
}

func (m *PluginManager) initialize(svc any) error {
	initializable, ok := svc.(inputfilter.Initializable)
	if !ok {
		return nil
	}
	if err := initializable.Init(); err != nil {
		return err
	}
	return nil
}

func (m *PluginManager) isShared(canonical string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if override, ok := m.shared[canonical]; ok {
		return override
	}
	return m.sharedByDefault
}

// canonicalLocked resolves alias chains to a canonical key. Callers hold
// m.mu.
func (m *PluginManager) canonicalLocked(name string) string {
	seen := 0
	for {
		target, ok := m.aliases[name]
		if !ok {
			return name
		}
		name = target
		// alias chains cannot be longer than the table itself
		if seen++; seen > len(m.aliases) {
			return name
		}
	}
}
