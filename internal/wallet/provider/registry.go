package provider

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var (
	// ErrUnknownProvider is returned when no factory is registered for an id.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrAlreadyRegistered is returned on a duplicate Register call.
	ErrAlreadyRegistered = errors.New("provider already registered")
)

// Registry owns the loaded provider handles, keyed by provider id. Handles
// are created lazily on first resolve, cached for the process lifetime and
// explicitly evictable.
type Registry struct {
	mu        sync.Mutex
	factories map[string]Factory
	handles   map[string]Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		handles:   make(map[string]Adapter),
	}
}

// Register adds a factory for the given provider id.
func (r *Registry) Register(providerID string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[providerID]; ok {
		return errors.Wrap(ErrAlreadyRegistered, providerID)
	}

	r.factories[providerID] = factory
	return nil
}

// Resolve returns the cached handle for the given provider id, loading it via
// the registered factory on first use.
//
//nolint:ireturn // the registry hands out the adapter contract by design
func (r *Registry) Resolve(providerID string) (Adapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if handle, ok := r.handles[providerID]; ok {
		return handle, nil
	}

	factory, ok := r.factories[providerID]
	if !ok {
		return nil, errors.Wrap(ErrUnknownProvider, providerID)
	}

	handle, err := factory()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load provider %q", providerID)
	}

	r.handles[providerID] = handle

	log.Debug().Str("provider_id", providerID).Msg("Provider handle loaded")

	return handle, nil
}

// Evict drops the cached handle for the given id. The factory stays
// registered, so a later resolve loads a fresh handle.
func (r *Registry) Evict(providerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, providerID)
}

// Known returns the registered provider ids, sorted.
func (r *Registry) Known() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Reset drops all cached handles, keeping registrations.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles = make(map[string]Adapter)
}
