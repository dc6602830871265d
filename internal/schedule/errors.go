package schedule

import (
	"fmt"
	"strings"

	"github.com/jonathanvila/windup/internal/phase"
)

// Constraint identifies which declaration style produced an edge, warning,
// or conflict.
type Constraint string

const (
	ConstraintAfter  Constraint = "after"
	ConstraintBefore Constraint = "before"
)

// CrossPhaseConflictError reports a before/after constraint that contradicts
// the units' relative phase order. Phase membership always dominates, so the
// constraint can never be satisfied.
type CrossPhaseConflictError struct {
	UnitID      string
	UnitPhase   phase.Phase
	TargetID    string
	TargetPhase phase.Phase
	Constraint  Constraint
}

func (e *CrossPhaseConflictError) Error() string {
	if e.Constraint == ConstraintBefore {
		return fmt.Sprintf("schedule: %q must run before %q, but phase %q runs after phase %q",
			e.UnitID, e.TargetID, e.UnitPhase, e.TargetPhase)
	}
	return fmt.Sprintf("schedule: %q must run after %q, but phase %q runs before phase %q",
		e.UnitID, e.TargetID, e.UnitPhase, e.TargetPhase)
}

// CyclicDependencyError reports a same-phase constraint subgraph that cannot
// be linearized. IDs holds the whole unresolved remainder of the phase, not
// just one minimal cycle.
type CyclicDependencyError struct {
	Phase phase.Phase
	IDs   []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("schedule: cyclic dependencies in phase %q among [%s]",
		e.Phase, strings.Join(e.IDs, ", "))
}

// UnresolvedReference records a constraint whose target is absent from the
// working set. The constraint is dropped and scheduling proceeds; optional
// units are routinely absent.
type UnresolvedReference struct {
	UnitID     string
	Target     string
	Constraint Constraint
}

func (w UnresolvedReference) String() string {
	return fmt.Sprintf("%q declares execute-%s %q, which is not in the working set; constraint dropped",
		w.UnitID, string(w.Constraint), w.Target)
}
