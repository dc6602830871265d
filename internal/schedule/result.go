package schedule

import (
	"github.com/jonathanvila/windup/internal/phase"
	"github.com/jonathanvila/windup/internal/provider"
)

// PhaseGroup is one phase's slice of the schedule. Units holds the normative
// order; Batches decomposes the same units into successive sets with no
// constraints among their members, for drivers that execute independent
// units concurrently.
type PhaseGroup struct {
	Phase   phase.Phase
	Units   []*provider.Metadata
	Batches [][]*provider.Metadata
}

// Result is a complete, valid execution order plus any non-fatal warnings.
// It is immutable; accessors return copies of the top-level slices.
type Result struct {
	ordered  []*provider.Metadata
	groups   []PhaseGroup
	warnings []UnresolvedReference
}

// Providers returns the full sequence in execution order.
func (r *Result) Providers() []*provider.Metadata {
	return append([]*provider.Metadata{}, r.ordered...)
}

// IDs returns the unit ids in execution order.
func (r *Result) IDs() []string {
	ids := make([]string, 0, len(r.ordered))
	for _, unit := range r.ordered {
		ids = append(ids, unit.ID())
	}
	return ids
}

// Groups returns the schedule grouped by phase boundary, in phase order.
func (r *Result) Groups() []PhaseGroup {
	return append([]PhaseGroup{}, r.groups...)
}

// Warnings returns the unresolved references collected while scheduling.
func (r *Result) Warnings() []UnresolvedReference {
	return append([]UnresolvedReference{}, r.warnings...)
}

// Len returns the number of scheduled units.
func (r *Result) Len() int {
	return len(r.ordered)
}
