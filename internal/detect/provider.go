package detect

import (
	"context"
	"sync"
)

// Entity is one span recognized by a model provider, already mapped from
// the provider's native label set to a Category by its adapter.
type Entity struct {
	Span       Span
	Category   Category
	Confidence float64
}

// Provider is the capability contract every model detector satisfies.
// Implementations must be safe for concurrent use: the scan path only
// ever reads.
type Provider interface {
	// ID returns the provider identifier (e.g. "hf_ner", "openai").
	ID() string
	// Recognize returns the entity spans found in text. A provider that
	// cannot run should return ErrProviderUnavailable (possibly wrapped)
	// rather than fabricating results.
	Recognize(ctx context.Context, text string) ([]Entity, error)
}

// ProviderFactory constructs a provider. Construction may be expensive
// (model load, connection probe), so the registry defers it until first use
// and runs it exactly once.
type ProviderFactory func() (Provider, error)

// Registry holds model providers in registration order. Registration order
// matters: it is the final tie-break in the merger's precedence rule.
//
// Providers are initialized lazily and exactly once; a factory failure is
// remembered and reported as a degradation on every scan that wants the
// provider, never as a scan error.
type Registry struct {
	mu      sync.Mutex
	entries []*registryEntry
}

type registryEntry struct {
	id       string
	factory  ProviderFactory
	once     sync.Once
	provider Provider
	err      error
}

// NewRegistry returns an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a provider factory under the given id. Later registrations
// with a duplicate id are ignored.
func (r *Registry) Register(id string, factory ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.id == id {
			return
		}
	}
	r.entries = append(r.entries, &registryEntry{id: id, factory: factory})
}

// IDs returns the registered provider ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, len(r.entries))
	for i, e := range r.entries {
		ids[i] = e.id
	}
	return ids
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// provider initializes (once) and returns the provider for id.
func (r *Registry) provider(id string) (Provider, error) {
	r.mu.Lock()
	var entry *registryEntry
	for _, e := range r.entries {
		if e.id == id {
			entry = e
			break
		}
	}
	r.mu.Unlock()

	if entry == nil {
		return nil, ErrProviderUnavailable
	}
	entry.once.Do(func() {
		entry.provider, entry.err = entry.factory()
	})
	if entry.err != nil {
		return nil, entry.err
	}
	return entry.provider, nil
}
