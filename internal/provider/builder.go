package provider

import (
	"strings"

	"github.com/jonathanvila/windup/internal/phase"
)

// Builder accumulates scheduling metadata for one unit and produces the
// frozen record. A builder is owned by a single caller until Build; there is
// no locking.
type Builder struct {
	id        string
	ref       Ref
	origin    string
	phase     phase.Phase
	after     []Ref
	afterIDs  []string
	before    []Ref
	beforeIDs []string
	tags      []string
	seeded    bool
}

// NewBuilder starts metadata for the unit with the given id and
// implementation reference.
func NewBuilder(id string, ref Ref) (*Builder, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, &InvalidMetadataError{Reason: "id is required"}
	}
	if ref.IsZero() {
		return nil, &InvalidMetadataError{ID: trimmed, Reason: "implementation reference is required"}
	}
	return &Builder{id: trimmed, ref: ref}, nil
}

// ForProvider starts metadata for a provider instance, seeding defaults from
// its own declaration and origin when it carries them.
func ForProvider(p Provider) (*Builder, error) {
	if p == nil {
		return nil, &InvalidMetadataError{Reason: "provider is required"}
	}
	builder, err := NewBuilder(p.ID(), RefOf(p))
	if err != nil {
		return nil, err
	}
	if declarer, ok := p.(Declarer); ok {
		builder.SeedFromDefaults(declarer.Declaration())
	}
	if originator, ok := p.(Originator); ok {
		builder.SetOrigin(originator.Origin())
	}
	return builder, nil
}

// SeedFromDefaults applies a declaration reader's tuple. It may be called at
// most once, before any override; a second call panics.
func (b *Builder) SeedFromDefaults(d Declaration) *Builder {
	if b.seeded {
		panic("provider: metadata defaults already seeded")
	}
	b.seeded = true
	b.phase = d.Phase
	b.after = append([]Ref{}, d.After...)
	b.afterIDs = append([]string{}, d.AfterIDs...)
	b.before = append([]Ref{}, d.Before...)
	b.beforeIDs = append([]string{}, d.BeforeIDs...)
	b.AddTags(d.Tags...)
	return b
}

// SetOrigin records a diagnostic description of where the unit came from.
func (b *Builder) SetOrigin(origin string) *Builder {
	b.origin = strings.TrimSpace(origin)
	return b
}

// SetPhase assigns the unit's execution phase.
func (b *Builder) SetPhase(p phase.Phase) *Builder {
	b.phase = p
	return b
}

// SetExecuteAfter replaces the implementations this unit must run after.
func (b *Builder) SetExecuteAfter(refs ...Ref) *Builder {
	b.after = append([]Ref{}, refs...)
	return b
}

// AddExecuteAfter appends implementations this unit must run after, skipping
// empty references and entries already present.
func (b *Builder) AddExecuteAfter(refs ...Ref) *Builder {
	b.after = appendMissingRefs(b.after, refs...)
	return b
}

// SetExecuteAfterIDs replaces the unit ids this unit must run after.
func (b *Builder) SetExecuteAfterIDs(ids ...string) *Builder {
	b.afterIDs = append([]string{}, ids...)
	return b
}

// AddExecuteAfterID appends unit ids this unit must run after, skipping
// blanks and entries already present.
func (b *Builder) AddExecuteAfterID(ids ...string) *Builder {
	b.afterIDs = appendMissingIDs(b.afterIDs, ids...)
	return b
}

// SetExecuteBefore replaces the implementations this unit must run before.
func (b *Builder) SetExecuteBefore(refs ...Ref) *Builder {
	b.before = append([]Ref{}, refs...)
	return b
}

// AddExecuteBefore appends implementations this unit must run before,
// skipping empty references and entries already present.
func (b *Builder) AddExecuteBefore(refs ...Ref) *Builder {
	b.before = appendMissingRefs(b.before, refs...)
	return b
}

// SetExecuteBeforeIDs replaces the unit ids this unit must run before.
func (b *Builder) SetExecuteBeforeIDs(ids ...string) *Builder {
	b.beforeIDs = append([]string{}, ids...)
	return b
}

// AddExecuteBeforeID appends unit ids this unit must run before, skipping
// blanks and entries already present.
func (b *Builder) AddExecuteBeforeID(ids ...string) *Builder {
	b.beforeIDs = appendMissingIDs(b.beforeIDs, ids...)
	return b
}

// AddTags appends informational tags. Entries are trimmed; blank and
// duplicate entries are dropped.
func (b *Builder) AddTags(tags ...string) *Builder {
	b.tags = appendMissingIDs(b.tags, tags...)
	return b
}

// Build produces the frozen metadata record. The phase falls back to the
// catalog default when never set; an explicitly set phase must exist in the
// catalog. Constraint sets are de-duplicated preserving first occurrence;
// blank entries and self-references fail the build.
func (b *Builder) Build(catalog *phase.Catalog) (*Metadata, error) {
	if catalog == nil {
		return nil, &InvalidMetadataError{ID: b.id, Reason: "phase catalog is required"}
	}
	resolved := b.resolvePhase(catalog)
	if !catalog.Contains(resolved) {
		return nil, &phase.UnknownPhaseError{Phase: resolved}
	}
	after, err := normalizeRefs(b.id, b.ref, "executeAfter", b.after)
	if err != nil {
		return nil, err
	}
	before, err := normalizeRefs(b.id, b.ref, "executeBefore", b.before)
	if err != nil {
		return nil, err
	}
	afterIDs, err := normalizeIDs(b.id, "executeAfterIDs", b.afterIDs)
	if err != nil {
		return nil, err
	}
	beforeIDs, err := normalizeIDs(b.id, "executeBeforeIDs", b.beforeIDs)
	if err != nil {
		return nil, err
	}
	origin := b.origin
	if origin == "" {
		origin = b.ref.String()
	}
	return &Metadata{
		id:        b.id,
		ref:       b.ref,
		origin:    origin,
		phase:     resolved,
		after:     after,
		afterIDs:  afterIDs,
		before:    before,
		beforeIDs: beforeIDs,
		tags:      append([]string{}, b.tags...),
	}, nil
}

func (b *Builder) resolvePhase(catalog *phase.Catalog) phase.Phase {
	if strings.TrimSpace(string(b.phase)) == "" {
		return catalog.Default()
	}
	return b.phase
}

func appendMissingRefs(dst []Ref, refs ...Ref) []Ref {
	for _, r := range refs {
		if r.IsZero() || containsRef(dst, r) {
			continue
		}
		dst = append(dst, r)
	}
	return dst
}

func appendMissingIDs(dst []string, ids ...string) []string {
	for _, id := range ids {
		trimmed := strings.TrimSpace(id)
		if trimmed == "" || containsString(dst, trimmed) {
			continue
		}
		dst = append(dst, trimmed)
	}
	return dst
}

func normalizeRefs(owner string, own Ref, field string, refs []Ref) ([]Ref, error) {
	out := make([]Ref, 0, len(refs))
	for _, r := range refs {
		if r.IsZero() {
			return nil, &InvalidMetadataError{ID: owner, Reason: field + " contains an empty reference"}
		}
		if r == own {
			return nil, &InvalidMetadataError{ID: owner, Reason: field + " references the unit itself"}
		}
		if containsRef(out, r) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func normalizeIDs(owner string, field string, ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		trimmed := strings.TrimSpace(id)
		if trimmed == "" {
			return nil, &InvalidMetadataError{ID: owner, Reason: field + " contains a blank id"}
		}
		if trimmed == owner {
			return nil, &InvalidMetadataError{ID: owner, Reason: field + " references the unit itself"}
		}
		if containsString(out, trimmed) {
			continue
		}
		out = append(out, trimmed)
	}
	return out, nil
}

func containsRef(refs []Ref, want Ref) bool {
	for _, r := range refs {
		if r == want {
			return true
		}
	}
	return false
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
