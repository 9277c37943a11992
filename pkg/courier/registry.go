package courier

import (
	"fmt"
	"sync"
)

// Factory lazily constructs a courier driver. It is invoked at most once per
// name; the result is memoized so factory-backed drivers are singletons.
type Factory func() (Courier, error)

// Registry manages registered courier drivers by name, with lazy factory
// support. A mutex guards the memoization so concurrent first-resolution of
// the same factory-backed name resolves exactly once.
type Registry struct {
	mu        sync.RWMutex
	couriers  map[string]Courier
	factories map[string]Factory
	order     []string
}

// NewRegistry creates a new courier registry.
func NewRegistry() *Registry {
	return &Registry{
		couriers:  make(map[string]Courier),
		factories: make(map[string]Factory),
	}
}

// Register stores a driver under its own declared name. A name collision
// overwrites the previous entry.
func (r *Registry) Register(c Courier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := c.Name()
	r.trackOrder(name)
	r.couriers[name] = c
}

// RegisterFactory stores a constructor keyed by name without invoking it.
func (r *Registry) RegisterFactory(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trackOrder(name)
	r.factories[name] = factory
}

// Get returns a driver by name, resolving and memoizing its factory on first
// use. Unknown names fail with ErrNotRegistered.
func (r *Registry) Get(name string) (Courier, error) {
	r.mu.RLock()
	c, ok := r.couriers[name]
	r.mu.RUnlock()
	if ok {
		return c, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolveLocked(name)
}

// Has reports whether a driver instance or an unresolved factory exists
// under the name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, isInstance := r.couriers[name]
	_, isFactory := r.factories[name]
	return isInstance || isFactory
}

// Names returns the registered names in registration order, deduplicated
// across instances and factories.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Count returns the number of registered names.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// All forces resolution of every unresolved factory and returns all drivers
// in registration order.
func (r *Registry) All() ([]Courier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]Courier, 0, len(r.order))
	for _, name := range r.order {
		c, err := r.resolveLocked(name)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, nil
}

// Unregister removes one name from both the instance and factory stores.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.couriers, name)
	delete(r.factories, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Clear removes all entries.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.couriers = make(map[string]Courier)
	r.factories = make(map[string]Factory)
	r.order = nil
}

// resolveLocked returns the instance for name, invoking its factory if
// needed. Callers must hold the write lock.
func (r *Registry) resolveLocked(name string) (Courier, error) {
	if c, ok := r.couriers[name]; ok {
		return c, nil
	}

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}

	c, err := factory()
	if err != nil {
		return nil, fmt.Errorf("constructing courier %q: %w", name, err)
	}
	r.couriers[name] = c
	return c, nil
}

func (r *Registry) trackOrder(name string) {
	for _, n := range r.order {
		if n == name {
			return
		}
	}
	r.order = append(r.order, name)
}
