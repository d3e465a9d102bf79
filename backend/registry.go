package backend

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/bryanwhiting/weatherman/request"
)

// Factory constructs a backend. It returns an error when a required collaborator is missing or
// unreachable.
type Factory func(ctx context.Context) (Backend, error)

type registration struct {
	factory     Factory
	remediation string
}

// Registry maps backend names to factories
type Registry struct {
	mu         sync.RWMutex
	defaultKey request.Backend
	entries    map[request.Backend]registration
}

// NewRegistry creates an empty registry that resolves auto to defaultBackend
func NewRegistry(defaultBackend request.Backend) *Registry {
	return &Registry{
		defaultKey: defaultBackend,
		entries:    make(map[request.Backend]registration),
	}
}

// Register adds or replaces the factory for name. remediation is reported to the user when the
// factory fails.
func (r *Registry) Register(name request.Backend, remediation string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = registration{factory: factory, remediation: remediation}
}

// Names returns the registered backend names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}

// Resolve maps auto to the default backend and constructs the chosen backend. Any failure is
// reported as a BackendUnavailableError.
func (r *Registry) Resolve(ctx context.Context, choice request.Backend) (Backend, error) {
	if choice == "" || choice == request.BackendAuto {
		choice = r.defaultKey
	}

	r.mu.RLock()
	entry, exists := r.entries[choice]
	r.mu.RUnlock()
	if !exists || entry.factory == nil {
		return nil, &BackendUnavailableError{
			Backend:     string(choice),
			Remediation: "choose one of the registered backends",
			Err:         ErrUnknownBackend,
		}
	}

	b, err := entry.factory(ctx)
	if err != nil {
		return nil, &BackendUnavailableError{
			Backend:     string(choice),
			Remediation: entry.remediation,
			Err:         err,
		}
	}
	slog.Debug("resolved forecasting backend", "requested", choice, "backend", b.Name())
	return b, nil
}
