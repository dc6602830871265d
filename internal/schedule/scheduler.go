package schedule

import (
	"fmt"
	"sort"

	"github.com/jonathanvila/windup/internal/phase"
	"github.com/jonathanvila/windup/internal/provider"
)

// Schedule turns a working set of metadata records into a single valid,
// reproducible execution order. Phase membership dominates: units are
// bucketed by phase in catalog order, and declared before/after constraints
// only shape the order inside a bucket. Identical input yields a
// byte-identical sequence; ties are broken by ascending lexical id.
//
// Fatal conditions (*provider.InvalidMetadataError, *phase.UnknownPhaseError,
// *CrossPhaseConflictError, *CyclicDependencyError) return a nil Result — a
// partially valid order could silently violate a declared constraint.
// Constraints naming units absent from the working set are dropped and
// reported as warnings on the Result.
func Schedule(working []*provider.Metadata, catalog *phase.Catalog) (*Result, error) {
	if catalog == nil {
		return nil, fmt.Errorf("schedule: phase catalog is required")
	}
	set, err := indexWorkingSet(working)
	if err != nil {
		return nil, err
	}

	buckets := make([][]*provider.Metadata, catalog.Len())
	phaseIndex := make(map[string]int, len(set.ordered))
	for _, unit := range set.ordered {
		idx, err := catalog.IndexOf(unit.Phase())
		if err != nil {
			return nil, err
		}
		phaseIndex[unit.ID()] = idx
		buckets[idx] = append(buckets[idx], unit)
	}

	graphs := make([]*bucketGraph, len(buckets))
	for i, bucket := range buckets {
		graphs[i] = newBucketGraph(bucket)
	}

	var warnings []UnresolvedReference
	for _, unit := range set.ordered {
		for _, target := range set.resolveRefs(unit, unit.ExecuteAfter(), ConstraintAfter, &warnings) {
			if err := relate(graphs, phaseIndex, unit, target, ConstraintAfter); err != nil {
				return nil, err
			}
		}
		for _, target := range set.resolveIDs(unit, unit.ExecuteAfterIDs(), ConstraintAfter, &warnings) {
			if err := relate(graphs, phaseIndex, unit, target, ConstraintAfter); err != nil {
				return nil, err
			}
		}
		for _, target := range set.resolveRefs(unit, unit.ExecuteBefore(), ConstraintBefore, &warnings) {
			if err := relate(graphs, phaseIndex, unit, target, ConstraintBefore); err != nil {
				return nil, err
			}
		}
		for _, target := range set.resolveIDs(unit, unit.ExecuteBeforeIDs(), ConstraintBefore, &warnings) {
			if err := relate(graphs, phaseIndex, unit, target, ConstraintBefore); err != nil {
				return nil, err
			}
		}
	}

	ordered := make([]*provider.Metadata, 0, len(set.ordered))
	var groups []PhaseGroup
	for i, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		sequence, residual := graphs[i].linearize()
		if residual != nil {
			return nil, &CyclicDependencyError{Phase: bucket[0].Phase(), IDs: residual}
		}
		group := PhaseGroup{Phase: bucket[0].Phase()}
		for _, id := range sequence {
			unit := set.byID[id]
			ordered = append(ordered, unit)
			group.Units = append(group.Units, unit)
		}
		for _, wave := range graphs[i].batches() {
			batch := make([]*provider.Metadata, 0, len(wave))
			for _, id := range wave {
				batch = append(batch, set.byID[id])
			}
			group.Batches = append(group.Batches, batch)
		}
		groups = append(groups, group)
	}

	return &Result{ordered: ordered, groups: groups, warnings: warnings}, nil
}

// relate merges one constraint into the graphs. Same-phase constraints
// become edges. A cross-phase constraint already implied by phase order is
// silently satisfied; a contradictory one is fatal — this asymmetry is
// deliberate.
func relate(graphs []*bucketGraph, phaseIndex map[string]int, unit, target *provider.Metadata, constraint Constraint) error {
	unitIdx := phaseIndex[unit.ID()]
	targetIdx := phaseIndex[target.ID()]
	if unitIdx == targetIdx {
		if constraint == ConstraintAfter {
			graphs[unitIdx].addEdge(target.ID(), unit.ID())
		} else {
			graphs[unitIdx].addEdge(unit.ID(), target.ID())
		}
		return nil
	}
	contradiction := targetIdx > unitIdx
	if constraint == ConstraintBefore {
		contradiction = targetIdx < unitIdx
	}
	if contradiction {
		return &CrossPhaseConflictError{
			UnitID:      unit.ID(),
			UnitPhase:   unit.Phase(),
			TargetID:    target.ID(),
			TargetPhase: target.Phase(),
			Constraint:  constraint,
		}
	}
	return nil
}

// workingSet indexes the records under schedule by id and by implementation
// reference. ordered is sorted by id so every later traversal is
// deterministic regardless of caller iteration order.
type workingSet struct {
	ordered []*provider.Metadata
	byID    map[string]*provider.Metadata
	byRef   map[provider.Ref][]string
}

func indexWorkingSet(working []*provider.Metadata) (*workingSet, error) {
	set := &workingSet{
		ordered: make([]*provider.Metadata, 0, len(working)),
		byID:    make(map[string]*provider.Metadata, len(working)),
		byRef:   make(map[provider.Ref][]string, len(working)),
	}
	for _, unit := range working {
		if unit == nil {
			return nil, &provider.InvalidMetadataError{Reason: "working set contains a nil record"}
		}
		if unit.ID() == "" {
			return nil, &provider.InvalidMetadataError{Reason: "working set contains a record without an id"}
		}
		if _, dup := set.byID[unit.ID()]; dup {
			return nil, &provider.InvalidMetadataError{ID: unit.ID(), Reason: "duplicate id in working set"}
		}
		set.byID[unit.ID()] = unit
		set.ordered = append(set.ordered, unit)
	}
	sort.Slice(set.ordered, func(i, j int) bool {
		return set.ordered[i].ID() < set.ordered[j].ID()
	})
	for _, unit := range set.ordered {
		set.byRef[unit.Ref()] = append(set.byRef[unit.Ref()], unit.ID())
	}
	return set, nil
}

// resolveRefs maps ref constraints onto concrete units. A ref backing
// several units applies to every match except the declaring unit itself; a
// ref matching nothing is dropped with a warning.
func (s *workingSet) resolveRefs(unit *provider.Metadata, refs []provider.Ref, constraint Constraint, warnings *[]UnresolvedReference) []*provider.Metadata {
	var out []*provider.Metadata
	for _, ref := range refs {
		ids := s.byRef[ref]
		matched := false
		for _, id := range ids {
			if id == unit.ID() {
				continue
			}
			matched = true
			out = append(out, s.byID[id])
		}
		if !matched {
			*warnings = append(*warnings, UnresolvedReference{
				UnitID:     unit.ID(),
				Target:     ref.String(),
				Constraint: constraint,
			})
		}
	}
	return out
}

func (s *workingSet) resolveIDs(unit *provider.Metadata, ids []string, constraint Constraint, warnings *[]UnresolvedReference) []*provider.Metadata {
	var out []*provider.Metadata
	for _, id := range ids {
		target, ok := s.byID[id]
		if !ok {
			*warnings = append(*warnings, UnresolvedReference{
				UnitID:     unit.ID(),
				Target:     id,
				Constraint: constraint,
			})
			continue
		}
		out = append(out, target)
	}
	return out
}
