package providers

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Registry holds named extraction providers and provides thread-safe
// lookup. Providers are instantiated from config at startup.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]ExtractionProvider
	logger    *slog.Logger
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]ExtractionProvider),
		logger:    slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Register registers an extraction provider by name.
func (r *Registry) Register(name string, provider ExtractionProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = provider
	if r.logger != nil {
		r.logger.Info("registered extraction provider", "name", name)
	}
}

// Unregister removes an extraction provider by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.providers, name)
	if r.logger != nil {
		r.logger.Info("unregistered extraction provider", "name", name)
	}
}

// Get returns an extraction provider by name.
func (r *Registry) Get(name string) (ExtractionProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("extraction provider not found: %s", name)
	}
	return provider, nil
}

// Has checks if an extraction provider is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[name]
	return ok
}

// List returns all registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
