package provider

import (
	"context"

	"github.com/jonathanvila/windup/internal/analysis"
	"github.com/jonathanvila/windup/internal/phase"
)

// Provider is implemented by every schedulable unit of analysis logic.
type Provider interface {
	ID() string
	Execute(ctx context.Context, run *analysis.Run) error
}

// Declaration is the raw constraint tuple a declaration reader supplies for a
// unit: default phase, ordering hints and tags, any field possibly empty. The
// ordering kernel never sees the declaration's encoding, only this
// materialized form.
type Declaration struct {
	Phase     phase.Phase
	After     []Ref
	AfterIDs  []string
	Before    []Ref
	BeforeIDs []string
	Tags      []string
}

// Declarer is satisfied by providers that carry their own default
// declaration. ForProvider seeds the metadata builder from it.
type Declarer interface {
	Declaration() Declaration
}

// Originator is satisfied by providers that know where they were declared,
// such as rules loaded from a definition file.
type Originator interface {
	Origin() string
}
