package engine

import (
	"time"

	"github.com/jonathanvila/windup/internal/phase"
)

// Status classifies a provider execution or a whole run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// ProviderOutcome records one provider's execution within a run. Skipped
// outcomes carry no timestamps.
type ProviderOutcome struct {
	ID         string      `json:"id"`
	Phase      phase.Phase `json:"phase"`
	Status     Status      `json:"status"`
	Error      string      `json:"error,omitempty"`
	StartedAt  time.Time   `json:"started_at,omitempty"`
	FinishedAt time.Time   `json:"finished_at,omitempty"`
}

// Duration returns how long the provider ran, or zero if it never started.
func (o ProviderOutcome) Duration() time.Duration {
	if o.StartedAt.IsZero() || o.FinishedAt.IsZero() {
		return 0
	}
	return o.FinishedAt.Sub(o.StartedAt)
}

// RunReport is the durable record of a single analysis run.
type RunReport struct {
	RunID      string            `json:"run_id"`
	Source     string            `json:"source"`
	Status     Status            `json:"status"`
	Error      string            `json:"error,omitempty"`
	Sequence   []string          `json:"sequence"`
	Warnings   []string          `json:"warnings,omitempty"`
	Providers  []ProviderOutcome `json:"providers"`
	Findings   int               `json:"findings"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
}

// Duration returns the wall time of the whole run.
func (r RunReport) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outcome returns the recorded outcome for a provider id.
func (r RunReport) Outcome(id string) (ProviderOutcome, bool) {
	for _, outcome := range r.Providers {
		if outcome.ID == id {
			return outcome, true
		}
	}
	return ProviderOutcome{}, false
}
