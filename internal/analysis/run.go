package analysis

import (
	"go.uber.org/zap"

	"github.com/jonathanvila/windup/internal/report"
)

// Run carries shared state into every provider execution: the source tree
// under analysis, the finding set, and the report store.
type Run struct {
	RunID    string
	Source   string
	Findings *FindingSet
	Reports  *report.Store
	Log      *zap.Logger

	// Notify lets providers surface progress messages to whatever event
	// sink drives the run. Nil when no sink is attached; callers go
	// through Progress rather than invoking it directly.
	Notify func(providerID, message string)
}

// Progress reports a provider progress message when a sink is attached.
func (r *Run) Progress(providerID, message string) {
	if r == nil || r.Notify == nil {
		return
	}
	r.Notify(providerID, message)
}

// NewRun builds a run context over a source tree.
func NewRun(runID, source string, reports *report.Store, log *zap.Logger) *Run {
	if log == nil {
		log = zap.NewNop()
	}
	return &Run{
		RunID:    runID,
		Source:   source,
		Findings: NewFindingSet(),
		Reports:  reports,
		Log:      log,
	}
}
