// Package eventbus delivers execution events from the engine to interested
// consumers: the console UI, the journal, or test probes. Delivery is
// in-process and best-effort; scheduling itself never depends on it.
package eventbus

import (
	"errors"
	"strings"
	"time"

	"github.com/jonathanvila/windup/internal/phase"
)

// Type identifies one class of execution event.
type Type string

const (
	RunStarted        Type = "run.started"
	RunCompleted      Type = "run.completed"
	RunFailed         Type = "run.failed"
	PhaseStarted      Type = "phase.started"
	ProviderStarted   Type = "provider.started"
	ProviderProgress  Type = "provider.progress"
	ProviderCompleted Type = "provider.completed"
	ProviderFailed    Type = "provider.failed"
	ScheduleWarning   Type = "schedule.warning"
)

// AllTypes subscribes to every event type.
const AllTypes Type = ""

// Event captures a single notification emitted during an analysis run.
type Event struct {
	Type     Type        `json:"type"`
	RunID    string      `json:"run_id"`
	Provider string      `json:"provider,omitempty"`
	Phase    phase.Phase `json:"phase,omitempty"`
	Message  string      `json:"message,omitempty"`
	At       time.Time   `json:"at"`
}

// Normalize applies canonical formatting before validation.
func (e *Event) Normalize() {
	if e == nil {
		return
	}
	e.Type = Type(strings.TrimSpace(string(e.Type)))
	e.RunID = strings.TrimSpace(e.RunID)
	e.Provider = strings.TrimSpace(e.Provider)
	e.Message = strings.TrimSpace(e.Message)
}

// Stamp overwrites At with the supplied clock reading (UTC) when unset.
func (e *Event) Stamp(now time.Time) {
	if e == nil || !e.At.IsZero() {
		return
	}
	if now.IsZero() {
		now = time.Now()
	}
	e.At = now.UTC()
}

// Validate enforces baseline requirements for published events.
func (e Event) Validate() error {
	if e.Type == AllTypes {
		return errors.New("eventbus: type is required")
	}
	if e.RunID == "" {
		return errors.New("eventbus: run_id is required")
	}
	return nil
}

// key identifies an event for deduplication.
func (e Event) key() string {
	return string(e.Type) + "|" + e.RunID + "|" + e.Provider + "|" + string(e.Phase) + "|" + e.Message
}

// Processor consumes published events.
type Processor interface {
	HandleEvent(Event) error
}

// ProcessorFunc adapts a function into a Processor.
type ProcessorFunc func(Event) error

// HandleEvent executes f(e).
func (f ProcessorFunc) HandleEvent(e Event) error {
	if f == nil {
		return nil
	}
	return f(e)
}
