// Package engine drives analysis runs: it schedules the registered
// providers, executes them phase by phase, and persists a report of the
// outcome. All ordering decisions live in the schedule package; the engine
// only walks the result.
package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathanvila/windup/internal/analysis"
	"github.com/jonathanvila/windup/internal/eventbus"
	"github.com/jonathanvila/windup/internal/journal"
	"github.com/jonathanvila/windup/internal/provider"
	"github.com/jonathanvila/windup/internal/report"
	"github.com/jonathanvila/windup/internal/schedule"
)

// Engine executes scheduled providers against a source tree.
type Engine struct {
	registry    *provider.Registry
	log         *zap.Logger
	journal     *journal.Journal
	events      *eventbus.Router
	reports     *report.Store
	repo        Repository
	clock       func() time.Time
	parallelism int
}

// Option customizes the engine instance.
type Option func(*Engine)

// WithLogger injects a structured logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithJournal attaches a run journal. A nil journal stays a no-op.
func WithJournal(j *journal.Journal) Option {
	return func(e *Engine) {
		e.journal = j
	}
}

// WithEvents attaches an event router for run progress notifications.
func WithEvents(router *eventbus.Router) Option {
	return func(e *Engine) {
		e.events = router
	}
}

// WithReportStore attaches the store providers write report artifacts to.
func WithReportStore(store *report.Store) Option {
	return func(e *Engine) {
		e.reports = store
	}
}

// WithRepository attaches persistence for run reports.
func WithRepository(repo Repository) Option {
	return func(e *Engine) {
		e.repo = repo
	}
}

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithParallelism bounds how many unconstrained providers of one batch may
// run concurrently. Values below two keep execution sequential.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

// New wires an engine to the provider registry.
func New(registry *provider.Registry, opts ...Option) (*Engine, error) {
	if registry == nil {
		return nil, fmt.Errorf("engine: provider registry is required")
	}
	engine := &Engine{
		registry:    registry,
		log:         zap.NewNop(),
		clock:       time.Now,
		parallelism: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(engine)
		}
	}
	return engine, nil
}

// Plan computes the execution order for the current working set without
// running anything.
func (e *Engine) Plan() (*schedule.Result, error) {
	return schedule.Schedule(e.registry.WorkingSet(), e.registry.Catalog())
}

// Run schedules and executes every registered provider against the source
// tree. Fatal ordering errors abort before anything executes; a provider
// failure fails the run but the returned report still records every
// outcome. The report is persisted when a repository is attached.
func (e *Engine) Run(ctx context.Context, source string) (RunReport, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return RunReport{}, fmt.Errorf("engine: source directory is required")
	}
	started := e.clock()
	runID := newRunID(started)

	result, err := e.Plan()
	if err != nil {
		e.journal.Error("run %s aborted: %v", runID, err)
		e.log.Error("scheduling failed",
			zap.String("run_id", runID),
			zap.Error(err),
		)
		return RunReport{}, err
	}

	runReport := RunReport{
		RunID:     runID,
		Source:    source,
		Sequence:  result.IDs(),
		StartedAt: started,
	}
	e.publish(eventbus.Event{Type: eventbus.RunStarted, RunID: runID, Message: source})
	e.journal.Info("run %s started against %s (%d providers)", runID, source, result.Len())
	e.log.Info("run started",
		zap.String("run_id", runID),
		zap.String("source", source),
		zap.Int("providers", result.Len()),
	)
	for _, warning := range result.Warnings() {
		message := warning.String()
		if hint := e.suggest(warning.Target); hint != "" {
			message = fmt.Sprintf("%s (did you mean %q?)", message, hint)
		}
		runReport.Warnings = append(runReport.Warnings, message)
		e.journal.Warn(message)
		e.publish(eventbus.Event{
			Type:     eventbus.ScheduleWarning,
			RunID:    runID,
			Provider: warning.UnitID,
			Message:  message,
		})
	}

	run := analysis.NewRun(runID, source, e.reports, e.log)
	run.Notify = func(providerID, message string) {
		e.publish(eventbus.Event{
			Type:     eventbus.ProviderProgress,
			RunID:    runID,
			Provider: providerID,
			Message:  message,
		})
	}

	outcomes := newOutcomeSet()
	runErr := e.executeGroups(ctx, result, run, outcomes)

	runReport.Providers = outcomes.inOrder(result.Providers())
	runReport.Findings = run.Findings.Count()
	runReport.FinishedAt = e.clock()
	if runErr != nil {
		runReport.Status = StatusFailed
		runReport.Error = runErr.Error()
		e.publish(eventbus.Event{Type: eventbus.RunFailed, RunID: runID, Message: runErr.Error()})
		e.journal.Error("run %s failed: %v", runID, runErr)
	} else {
		runReport.Status = StatusSucceeded
		e.publish(eventbus.Event{Type: eventbus.RunCompleted, RunID: runID})
		e.journal.Info("run %s completed with %d findings", runID, runReport.Findings)
	}
	if e.repo != nil {
		if err := e.repo.Save(runReport); err != nil {
			e.log.Error("persisting run report failed",
				zap.String("run_id", runID),
				zap.Error(err),
			)
			if runErr == nil {
				runErr = err
			}
		}
	}
	return runReport, runErr
}

func (e *Engine) executeGroups(ctx context.Context, result *schedule.Result, run *analysis.Run, outcomes *outcomeSet) error {
	for _, group := range result.Groups() {
		if len(group.Units) == 0 {
			continue
		}
		e.publish(eventbus.Event{
			Type:    eventbus.PhaseStarted,
			RunID:   run.RunID,
			Phase:   group.Phase,
			Message: fmt.Sprintf("%d providers", len(group.Units)),
		})
		if e.parallelism > 1 {
			if err := e.executeBatches(ctx, group.Batches, run, outcomes); err != nil {
				return err
			}
			continue
		}
		for _, unit := range group.Units {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := e.executeUnit(ctx, unit, run, outcomes); err != nil {
				return err
			}
		}
	}
	return nil
}

// executeBatches runs each batch under a bounded errgroup. Members of a
// batch share no constraints, so their relative order is immaterial; a
// failure cancels the batch's in-flight members and stops the run.
func (e *Engine) executeBatches(ctx context.Context, batches [][]*provider.Metadata, run *analysis.Run, outcomes *outcomeSet) error {
	for _, batch := range batches {
		g, groupCtx := errgroup.WithContext(ctx)
		g.SetLimit(e.parallelism)
		for _, unit := range batch {
			unit := unit
			g.Go(func() error {
				return e.executeUnit(groupCtx, unit, run, outcomes)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) executeUnit(ctx context.Context, unit *provider.Metadata, run *analysis.Run, outcomes *outcomeSet) error {
	outcome := ProviderOutcome{
		ID:        unit.ID(),
		Phase:     unit.Phase(),
		StartedAt: e.clock(),
	}
	impl, err := e.registry.Resolve(unit.ID())
	if err == nil {
		e.publish(eventbus.Event{
			Type:     eventbus.ProviderStarted,
			RunID:    run.RunID,
			Provider: unit.ID(),
			Phase:    unit.Phase(),
		})
		err = impl.Execute(ctx, run)
	}
	outcome.FinishedAt = e.clock()
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Error = err.Error()
		outcomes.record(outcome)
		e.journal.Error("provider %s failed: %v", unit.ID(), err)
		e.publish(eventbus.Event{
			Type:     eventbus.ProviderFailed,
			RunID:    run.RunID,
			Provider: unit.ID(),
			Phase:    unit.Phase(),
			Message:  err.Error(),
		})
		return fmt.Errorf("engine: provider %s: %w", unit.ID(), err)
	}
	outcome.Status = StatusSucceeded
	outcomes.record(outcome)
	e.journal.Info("provider %s completed in %s", unit.ID(), outcome.Duration())
	e.publish(eventbus.Event{
		Type:     eventbus.ProviderCompleted,
		RunID:    run.RunID,
		Provider: unit.ID(),
		Phase:    unit.Phase(),
	})
	return nil
}

// suggest fuzzy-matches an unresolved target against the registered ids.
func (e *Engine) suggest(target string) string {
	matches := fuzzy.Find(target, e.registry.IDs())
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}

func (e *Engine) publish(event eventbus.Event) {
	if e.events == nil {
		return
	}
	event.Stamp(e.clock())
	e.events.Publish(event)
}

func newRunID(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.Unix(), uuid.NewString()[:8])
}

// outcomeSet collects per-provider outcomes from potentially concurrent
// executions.
type outcomeSet struct {
	mu   sync.Mutex
	byID map[string]ProviderOutcome
}

func newOutcomeSet() *outcomeSet {
	return &outcomeSet{byID: map[string]ProviderOutcome{}}
}

func (s *outcomeSet) record(outcome ProviderOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[outcome.ID] = outcome
}

// inOrder assembles the outcomes in schedule order. Units the run never
// reached are reported as skipped.
func (s *outcomeSet) inOrder(sequence []*provider.Metadata) []ProviderOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	ordered := make([]ProviderOutcome, 0, len(sequence))
	for _, unit := range sequence {
		if outcome, ok := s.byID[unit.ID()]; ok {
			ordered = append(ordered, outcome)
			continue
		}
		ordered = append(ordered, ProviderOutcome{
			ID:     unit.ID(),
			Phase:  unit.Phase(),
			Status: StatusSkipped,
		})
	}
	return ordered
}
