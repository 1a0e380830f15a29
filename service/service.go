// Package service defines the locator contract the input-filter plugin
// manager layers on, together with the error taxonomy shared by all
// implementations. The package intentionally stays small: the plugin manager
// is the interesting part, the container is a collaborator.
package service

import (
	"errors"
	"fmt"
	"sync"
)

// ErrServiceNotFound is returned when a requested service name cannot be
// resolved to an instance.
var ErrServiceNotFound = errors.New("service not found")

// ErrInvalidService is returned when a registered or resolved value does not
// satisfy the capability constraint of the locator it was requested from.
var ErrInvalidService = errors.New("invalid service")

// Locator resolves named services.
type Locator interface {
	// Has reports whether the locator can resolve name.
	Has(name string) bool
	// Get resolves name to an instance. Implementations wrap
	// ErrServiceNotFound when the name is unknown and ErrInvalidService when
	// the resolved value violates the locator's constraints.
	Get(name string) (any, error)
}

// Registry is a Locator that also accepts explicit registrations.
type Registry interface {
	Locator
	Register(name string, svc any) error
}

// Container is a minimal map-backed Registry. It is what tests and callers
// use as an enclosing locator; it enforces no capability constraint of its
// own.
type Container struct {
	mu       sync.RWMutex
	services map[string]any
}

var _ Registry = &Container{}

// NewContainer creates an empty Container.
func NewContainer() *Container {
	return &Container{services: make(map[string]any)}
}

func (c *Container) Register(name string, svc any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.services[name]; exists {
		return fmt.Errorf("service %q is already registered", name)
	}
	c.services[name] = svc
	return nil
}

// MustRegister is Register, panicking on error. Intended for wiring done at
// program start.
func (c *Container) MustRegister(name string, svc any) {
	if err := c.Register(name, svc); err != nil {
		panic(err)
	}
}

func (c *Container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, exists := c.services[name]
	return exists
}

func (c *Container) Get(name string) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	svc, exists := c.services[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrServiceNotFound, name)
	}
	return svc, nil
}
