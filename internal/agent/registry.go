package agent

import (
	"github.com/orbrick/taskorchestrator/internal/orcerrors"
)

// Registry is a mapping from agent name to adapter, plus a capability index.
// Immutable after setup; reads are lock-free per spec §5.
type Registry struct {
	byName []Adapter // registration order, doubles as the stable list()
	index  map[string]Adapter
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]Adapter)}
}

// Register adds an adapter, failing with DUPLICATE_REGISTRATION if the name
// is already present.
func (r *Registry) Register(a Adapter) error {
	if _, exists := r.index[a.Name()]; exists {
		return orcerrors.New(orcerrors.KindDuplicateRegistration,
			"agent already registered: "+a.Name())
	}
	r.index[a.Name()] = a
	r.byName = append(r.byName, a)
	return nil
}

// Pick returns the adapter whose name equals selector, else any adapter
// whose declared capabilities include selector, else nil.
func (r *Registry) Pick(selector string) (Adapter, bool) {
	if selector == "" {
		return r.first()
	}
	if a, ok := r.index[selector]; ok {
		return a, true
	}
	for _, a := range r.byName {
		for _, cap := range a.Capabilities() {
			if cap == selector {
				return a, true
			}
		}
	}
	return nil, false
}

// first returns the first registered adapter, used when a node has no
// assignTo selector ("any" means "the first registered agent").
func (r *Registry) first() (Adapter, bool) {
	if len(r.byName) == 0 {
		return nil, false
	}
	return r.byName[0], true
}

// List returns adapters in stable registration order.
func (r *Registry) List() []Adapter {
	out := make([]Adapter, len(r.byName))
	copy(out, r.byName)
	return out
}
