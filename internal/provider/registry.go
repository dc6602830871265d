package provider

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jonathanvila/windup/internal/phase"
)

// Registry assembles the working set of providers handed to the scheduler.
// Metadata is built at registration time so malformed records surface before
// any scheduling run and never enter the working set.
type Registry struct {
	catalog *phase.Catalog

	mu        sync.RWMutex
	providers map[string]Provider
	metadata  map[string]*Metadata
}

// NewRegistry returns an empty registry resolving phases against catalog.
func NewRegistry(catalog *phase.Catalog) *Registry {
	return &Registry{
		catalog:   catalog,
		providers: map[string]Provider{},
		metadata:  map[string]*Metadata{},
	}
}

// Catalog returns the phase catalog the registry builds metadata against.
func (r *Registry) Catalog() *phase.Catalog {
	return r.catalog
}

// Register builds the provider's metadata and installs it. Returns an error
// if the metadata does not build or the id is already taken.
func (r *Registry) Register(p Provider) error {
	builder, err := ForProvider(p)
	if err != nil {
		return err
	}
	meta, err := builder.Build(r.catalog)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[meta.ID()]; exists {
		return fmt.Errorf("provider: %s already registered", meta.ID())
	}
	r.providers[meta.ID()] = p
	r.metadata[meta.ID()] = meta
	return nil
}

// MustRegister panics if registration fails. For wiring built-ins at
// startup.
func (r *Registry) MustRegister(p Provider) {
	if err := r.Register(p); err != nil {
		panic(err)
	}
}

// Resolve returns the implementation behind a unit id.
func (r *Registry) Resolve(id string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("provider: unknown id %s", id)
	}
	return p, nil
}

// Metadata returns the frozen record for a unit id.
func (r *Registry) Metadata(id string) (*Metadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta, ok := r.metadata[id]
	return meta, ok
}

// IDs returns the sorted identifiers of all registered units.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// WorkingSet returns the frozen metadata records sorted by id.
func (r *Registry) WorkingSet() []*Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.metadata))
	for id := range r.metadata {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	set := make([]*Metadata, 0, len(ids))
	for _, id := range ids {
		set = append(set, r.metadata[id])
	}
	return set
}

// Len returns the number of registered units.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
