package backend

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Factory constructs a backend instance.
type Factory func() (Backend, error)

// UnknownModelError is returned when no factory is registered for the
// requested name. Available lists every currently registered name.
type UnknownModelError struct {
	Requested string
	Available []string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown model: %s (available: %s)",
		e.Requested, strings.Join(e.Available, ", "))
}

// Registry maps backend names to factories and caches at most one instance
// per name. Instances live until Unload or process exit.
type Registry struct {
	mu        sync.Mutex
	factories map[string]Factory
	instances map[string]Backend
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		instances: make(map[string]Backend),
	}
}

// Register associates a name with a factory. The last registration for a
// given name wins.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns the cached instance for name, constructing and caching one on
// first use. Returns *UnknownModelError when no factory is registered.
func (r *Registry) Get(name string) (Backend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if instance, ok := r.instances[name]; ok {
		return instance, nil
	}

	factory, ok := r.factories[name]
	if !ok {
		return nil, &UnknownModelError{
			Requested: name,
			Available: r.availableLocked(),
		}
	}

	instance, err := factory()
	if err != nil {
		return nil, fmt.Errorf("construct backend %s: %w", name, err)
	}

	r.instances[name] = instance
	return instance, nil
}

// ListAvailable returns all registered backend names, sorted, regardless of
// load state.
func (r *Registry) ListAvailable() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.availableLocked()
}

func (r *Registry) availableLocked() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListLoaded returns the names of cached instances reporting IsLoaded.
func (r *Registry) ListLoaded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.instances))
	for name, instance := range r.instances {
		if instance.IsLoaded() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Unload unloads the cached instance for name, if any, and evicts it. A
// subsequent Get constructs a fresh instance.
func (r *Registry) Unload(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if instance, ok := r.instances[name]; ok {
		instance.Unload()
		delete(r.instances, name)
	}
}

// UnloadAll unloads every cached instance and clears the cache.
func (r *Registry) UnloadAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, instance := range r.instances {
		instance.Unload()
		delete(r.instances, name)
	}
}
