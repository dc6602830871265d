// Package report stores the artifacts an analysis run produces: JSON data
// files and markdown documents, each carrying an embedded metadata envelope
// tying it back to the run and provider that wrote it.

package report

import (
	"fmt"
	"time"
)

// Kind captures the storage shape and serialization format for a report
// artifact.
type Kind string

const (
	// KindMarkdown represents a markdown document with YAML frontmatter.
	KindMarkdown Kind = "markdown"
	// KindJSON represents a JSON document enriched with a _windup metadata
	// block.
	KindJSON Kind = "json"
	// KindDirectory represents a directory that must exist.
	KindDirectory Kind = "directory"
)

// Ref declares a stable identifier and relative location for a report
// artifact within the output directory.
type Ref struct {
	ID          string
	Name        string
	Description string
	Kind        Kind
	Rel         string
}

// Validate ensures the reference is well-formed.
func (r Ref) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("report: id is required")
	}
	if r.Kind == "" {
		return fmt.Errorf("report: kind is required for %s", r.ID)
	}
	if r.Rel == "" {
		return fmt.Errorf("report: relative path missing for %s", r.ID)
	}
	return nil
}

// Metadata captures provenance stored inside a report's frontmatter or
// metadata block.
type Metadata struct {
	ReportID    string
	RunID       string
	Provider    string
	Version     string
	GeneratedAt time.Time
}

// WithDefaults ensures metadata carries the report ID and a timestamp.
func (m Metadata) WithDefaults(ref Ref, now time.Time) Metadata {
	clone := m
	if clone.ReportID == "" {
		clone.ReportID = ref.ID
	}
	if clone.Version == "" {
		clone.Version = "1"
	}
	if clone.GeneratedAt.IsZero() {
		clone.GeneratedAt = now.UTC()
	} else {
		clone.GeneratedAt = clone.GeneratedAt.UTC()
	}
	return clone
}

// ValidateFor ensures metadata matches the report contract.
func (m Metadata) ValidateFor(ref Ref) error {
	if m.ReportID != ref.ID {
		return fmt.Errorf("report: metadata id %s does not match ref %s", m.ReportID, ref.ID)
	}
	if m.RunID == "" {
		return fmt.Errorf("report: run id is required for %s", ref.ID)
	}
	if m.Provider == "" {
		return fmt.Errorf("report: provider id is required for %s", ref.ID)
	}
	return nil
}

// State captures the readiness of a report artifact on disk.
type State string

const (
	StateMissing State = "missing"
	StateReady   State = "ready"
	StateInvalid State = "invalid"
	StateError   State = "error"
)

// CheckResult captures Store.Check results.
type CheckResult struct {
	Ref      Ref
	Path     string
	State    State
	Metadata *Metadata
	Err      error
}
