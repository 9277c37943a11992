package courier

// Resolver is a read-oriented layer over the Registry for name resolution
// and capability-based discovery.
type Resolver struct {
	registry *Registry
}

// NewResolver creates a resolver over a registry.
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Resolve returns a driver by name, propagating ErrNotRegistered for
// unknown names.
func (r *Resolver) Resolve(name string) (Courier, error) {
	return r.registry.Get(name)
}

// FindByCapabilities returns every driver that declares all of the required
// capabilities, in registration order. It forces full registry resolution.
func (r *Resolver) FindByCapabilities(required ...Capability) ([]Courier, error) {
	all, err := r.registry.All()
	if err != nil {
		return nil, err
	}

	var matches []Courier
	for _, c := range all {
		if SupportsAll(c, required) {
			matches = append(matches, c)
		}
	}
	return matches, nil
}

// Default returns the first registered driver, or nil when the registry is
// empty. The choice depends purely on registration order; there is no
// explicit default marker.
func (r *Resolver) Default() (Courier, error) {
	names := r.registry.Names()
	if len(names) == 0 {
		return nil, nil
	}
	return r.registry.Get(names[0])
}

// All returns every registered driver, forcing factory resolution.
func (r *Resolver) All() ([]Courier, error) {
	return r.registry.All()
}
