package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jonathanvila/windup/internal/analysis"
	"github.com/jonathanvila/windup/internal/phase"
	"github.com/jonathanvila/windup/internal/provider"
)

type consoleStub struct {
	provider.Base
}

func (s *consoleStub) Execute(context.Context, *analysis.Run) error { return nil }

func newConsoleStub(id string, decl provider.Declaration) *consoleStub {
	return &consoleStub{Base: provider.NewBase(id, decl)}
}

func populatedRegistry(t *testing.T) *provider.Registry {
	t.Helper()
	reg := provider.NewRegistry(phase.Standard())
	reg.MustRegister(newConsoleStub("discover-files", provider.Declaration{
		Phase: phase.Discovery,
		Tags:  []string{"builtin"},
	}))
	reg.MustRegister(newConsoleStub("java-imports", provider.Declaration{
		Phase:    phase.InitialAnalysis,
		AfterIDs: []string{"discover-files"},
	}))
	return reg
}

func runInit(t *testing.T, c *Console) tea.Model {
	t.Helper()
	model := tea.Model(c)
	cmd := c.Init()
	if cmd == nil {
		t.Fatal("Init returned no command")
	}
	for _, msg := range flatten(cmd()) {
		model, _ = model.Update(msg)
	}
	return model
}

// flatten unwraps tea.Batch results into individual messages.
func flatten(msg tea.Msg) []tea.Msg {
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var msgs []tea.Msg
	for _, cmd := range batch {
		if cmd != nil {
			msgs = append(msgs, flatten(cmd())...)
		}
	}
	return msgs
}

func TestNewConsoleRequiresRegistry(t *testing.T) {
	if _, err := NewConsole(nil, nil); err == nil {
		t.Fatal("expected error for nil registry")
	}
}

func TestConsoleRendersSchedule(t *testing.T) {
	c, err := NewConsole(populatedRegistry(t), nil)
	if err != nil {
		t.Fatalf("new console: %v", err)
	}
	model := runInit(t, c)
	model, _ = model.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	view := model.View()
	if !strings.Contains(view, "discover-files") || !strings.Contains(view, "java-imports") {
		t.Fatalf("view missing providers:\n%s", view)
	}
	if !strings.Contains(view, "2 providers across 2 phases") {
		t.Fatalf("view missing summary:\n%s", view)
	}
	// The first provider in execution order is selected, so its detail
	// pane must show its phase.
	if !strings.Contains(view, "phase: discovery") {
		t.Fatalf("view missing detail pane:\n%s", view)
	}
}

func TestConsoleShowsWarnings(t *testing.T) {
	reg := populatedRegistry(t)
	reg.MustRegister(newConsoleStub("xml-resources", provider.Declaration{
		Phase:    phase.InitialAnalysis,
		AfterIDs: []string{"missing-provider"},
	}))
	c, err := NewConsole(reg, nil)
	if err != nil {
		t.Fatalf("new console: %v", err)
	}
	model := runInit(t, c)
	model, _ = model.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	view := model.View()
	if !strings.Contains(view, "1 schedule warnings") {
		t.Fatalf("view missing warnings:\n%s", view)
	}
	if !strings.Contains(view, "missing-provider") {
		t.Fatalf("view missing warning target:\n%s", view)
	}
}

func TestConsoleJournalToggle(t *testing.T) {
	c, err := NewConsole(populatedRegistry(t), nil)
	if err != nil {
		t.Fatalf("new console: %v", err)
	}
	model := runInit(t, c)
	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyTab})
	if cmd != nil {
		for _, msg := range flatten(cmd()) {
			model, _ = model.Update(msg)
		}
	}
	view := model.View()
	if !strings.Contains(view, "Journal") || !strings.Contains(view, "journal is empty") {
		t.Fatalf("journal view = %q", view)
	}

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyTab})
	if !strings.Contains(model.View(), "providers across") {
		t.Fatal("tab did not return to the schedule view")
	}
}

func TestConsoleQuitKeys(t *testing.T) {
	c, err := NewConsole(populatedRegistry(t), nil)
	if err != nil {
		t.Fatalf("new console: %v", err)
	}
	model := runInit(t, c)
	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if msg := cmd(); msg == nil {
		t.Fatal("quit command produced no message")
	}
}
