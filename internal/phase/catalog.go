package phase

import (
	"fmt"
	"strings"
)

// UnknownPhaseError reports a phase that is absent from the catalog in use.
type UnknownPhaseError struct {
	Phase Phase
}

func (e *UnknownPhaseError) Error() string {
	return fmt.Sprintf("phase: unknown phase %q", string(e.Phase))
}

// Catalog is a fixed total order of phases with a designated default. It is
// read-only after construction and safe for concurrent use.
type Catalog struct {
	ordered []Phase
	index   map[Phase]int
	def     Phase
}

// NewCatalog builds a catalog from an ordered phase list. Entries are trimmed
// and must be unique; the default must be one of the listed phases.
func NewCatalog(ordered []Phase, def Phase) (*Catalog, error) {
	if len(ordered) == 0 {
		return nil, fmt.Errorf("phase: catalog requires at least one phase")
	}
	index := make(map[Phase]int, len(ordered))
	phases := make([]Phase, 0, len(ordered))
	for i, entry := range ordered {
		trimmed := Phase(strings.TrimSpace(string(entry)))
		if trimmed == "" {
			return nil, fmt.Errorf("phase: catalog entry %d is blank", i)
		}
		if _, exists := index[trimmed]; exists {
			return nil, fmt.Errorf("phase: catalog lists %q twice", string(trimmed))
		}
		index[trimmed] = i
		phases = append(phases, trimmed)
	}
	def = Phase(strings.TrimSpace(string(def)))
	if _, ok := index[def]; !ok {
		return nil, fmt.Errorf("phase: default %q is not in the catalog", string(def))
	}
	return &Catalog{ordered: phases, index: index, def: def}, nil
}

// IndexOf returns the phase's position in the catalog order.
func (c *Catalog) IndexOf(p Phase) (int, error) {
	i, ok := c.index[p]
	if !ok {
		return 0, &UnknownPhaseError{Phase: p}
	}
	return i, nil
}

// Contains reports whether the phase is part of the catalog.
func (c *Catalog) Contains(p Phase) bool {
	_, ok := c.index[p]
	return ok
}

// Default returns the phase assigned to providers that declare none.
func (c *Catalog) Default() Phase {
	return c.def
}

// Phases returns the catalog order.
func (c *Catalog) Phases() []Phase {
	return append([]Phase{}, c.ordered...)
}

// Len returns the number of phases in the catalog.
func (c *Catalog) Len() int {
	return len(c.ordered)
}
