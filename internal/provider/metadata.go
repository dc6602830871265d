package provider

import (
	"fmt"

	"github.com/jonathanvila/windup/internal/phase"
)

// InvalidMetadataError reports an unusable metadata record: missing id,
// missing implementation reference, or a malformed constraint entry.
type InvalidMetadataError struct {
	ID     string
	Reason string
}

func (e *InvalidMetadataError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("provider: invalid metadata: %s", e.Reason)
	}
	return fmt.Sprintf("provider: invalid metadata for %q: %s", e.ID, e.Reason)
}

// Metadata describes one unit's scheduling constraints. Records are frozen
// at Build time: accessors return copies and the scheduler never mutates its
// input.
type Metadata struct {
	id        string
	ref       Ref
	origin    string
	phase     phase.Phase
	after     []Ref
	afterIDs  []string
	before    []Ref
	beforeIDs []string
	tags      []string
}

// ID returns the unit identifier, unique within a working set.
func (m *Metadata) ID() string {
	return m.id
}

// Ref returns the identity of the unit's implementation.
func (m *Metadata) Ref() Ref {
	return m.ref
}

// Origin describes where the unit came from. Diagnostic only, no ordering
// effect.
func (m *Metadata) Origin() string {
	return m.origin
}

// Phase returns the execution phase the unit belongs to.
func (m *Metadata) Phase() phase.Phase {
	return m.phase
}

// ExecuteAfter lists implementations this unit must run after.
func (m *Metadata) ExecuteAfter() []Ref {
	return append([]Ref{}, m.after...)
}

// ExecuteAfterIDs lists unit ids this unit must run after.
func (m *Metadata) ExecuteAfterIDs() []string {
	return append([]string{}, m.afterIDs...)
}

// ExecuteBefore lists implementations this unit must run before.
func (m *Metadata) ExecuteBefore() []Ref {
	return append([]Ref{}, m.before...)
}

// ExecuteBeforeIDs lists unit ids this unit must run before.
func (m *Metadata) ExecuteBeforeIDs() []string {
	return append([]string{}, m.beforeIDs...)
}

// Tags returns the unit's informational tags.
func (m *Metadata) Tags() []string {
	return append([]string{}, m.tags...)
}

// HasTag reports whether the unit carries the tag.
func (m *Metadata) HasTag(tag string) bool {
	for _, t := range m.tags {
		if t == tag {
			return true
		}
	}
	return false
}
