// Package tui is the interactive schedule inspector. It follows the usual
// bubbletea shape: a model holding all state, typed messages produced by
// commands, and a pure View over the model.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jonathanvila/windup/internal/journal"
	"github.com/jonathanvila/windup/internal/provider"
	"github.com/jonathanvila/windup/internal/schedule"
)

const journalTailSize = 15

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	phaseStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
)

// providerItem adapts a metadata record to the bubbles list interface.
type providerItem struct {
	meta *provider.Metadata
}

func (i providerItem) Title() string { return i.meta.ID() }

func (i providerItem) Description() string {
	parts := []string{i.meta.Phase().String()}
	if tags := i.meta.Tags(); len(tags) > 0 {
		parts = append(parts, "tags: "+strings.Join(tags, ", "))
	}
	if origin := i.meta.Origin(); origin != "" {
		parts = append(parts, origin)
	}
	return strings.Join(parts, " · ")
}

func (i providerItem) FilterValue() string { return i.meta.ID() }

type planComputedMsg struct {
	plan *schedule.Result
	err  error
}

type journalTailMsg struct {
	lines []string
	total int
}

// Console is the schedule inspector model.
type Console struct {
	registry *provider.Registry
	journal  *journal.Journal

	providers list.Model
	plan      *schedule.Result
	planErr   error

	journalLines []string
	journalTotal int
	showJournal  bool

	width  int
	height int
}

// NewConsole builds the inspector over a populated registry. The journal may
// be nil; its pane then shows an empty tail.
func NewConsole(registry *provider.Registry, jrnl *journal.Journal) (*Console, error) {
	if registry == nil {
		return nil, fmt.Errorf("tui: provider registry is required")
	}
	providers := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	providers.Title = "⬡ WINDUP SCHEDULE"
	providers.SetShowStatusBar(false)
	providers.SetFilteringEnabled(true)
	return &Console{
		registry:  registry,
		journal:   jrnl,
		providers: providers,
	}, nil
}

// Init computes the initial plan and journal tail.
func (c *Console) Init() tea.Cmd {
	return tea.Batch(c.computePlan, c.tailJournal)
}

func (c *Console) computePlan() tea.Msg {
	plan, err := schedule.Schedule(c.registry.WorkingSet(), c.registry.Catalog())
	return planComputedMsg{plan: plan, err: err}
}

func (c *Console) tailJournal() tea.Msg {
	lines, total := c.journal.Tail(journalTailSize)
	return journalTailMsg{lines: lines, total: total}
}

// Update routes messages into the model.
func (c *Console) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case planComputedMsg:
		c.plan = m.plan
		c.planErr = m.err
		c.providers.SetItems(c.planItems())
		return c, nil
	case journalTailMsg:
		c.journalLines = m.lines
		c.journalTotal = m.total
		return c, nil
	case tea.WindowSizeMsg:
		c.width = m.Width
		c.height = m.Height
		c.providers.SetSize(m.Width, listHeight(m.Height))
		return c, nil
	case tea.KeyMsg:
		return c.handleKey(m)
	}
	var cmd tea.Cmd
	c.providers, cmd = c.providers.Update(msg)
	return c, cmd
}

func (c *Console) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Keys pass through to the list while its filter input is active.
	if c.providers.FilterState() == list.Filtering {
		var cmd tea.Cmd
		c.providers, cmd = c.providers.Update(msg)
		return c, cmd
	}
	switch msg.String() {
	case "q", "ctrl+c":
		return c, tea.Quit
	case "r":
		return c, tea.Batch(c.computePlan, c.tailJournal)
	case "tab":
		c.showJournal = !c.showJournal
		if c.showJournal {
			return c, c.tailJournal
		}
		return c, nil
	}
	var cmd tea.Cmd
	c.providers, cmd = c.providers.Update(msg)
	return c, cmd
}

// planItems flattens the plan into list entries, in execution order.
func (c *Console) planItems() []list.Item {
	if c.plan == nil {
		return nil
	}
	ordered := c.plan.Providers()
	items := make([]list.Item, 0, len(ordered))
	for _, meta := range ordered {
		items = append(items, providerItem{meta: meta})
	}
	return items
}

// View renders the inspector.
func (c *Console) View() string {
	if c.planErr != nil {
		return errorStyle.Render("Scheduling failed") + "\n\n" +
			c.planErr.Error() + "\n\n" +
			dimStyle.Render("r=retry  q=quit") + "\n"
	}
	if c.plan == nil {
		return dimStyle.Render("Computing schedule…") + "\n"
	}
	if c.showJournal {
		return c.journalView()
	}
	return c.scheduleView()
}

func (c *Console) scheduleView() string {
	var b strings.Builder
	b.WriteString(c.providers.View())
	b.WriteString("\n")
	b.WriteString(c.summaryLine())
	if detail := c.detailView(); detail != "" {
		b.WriteString("\n")
		b.WriteString(detail)
	}
	if warnings := c.warningsView(); warnings != "" {
		b.WriteString("\n")
		b.WriteString(warnings)
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("tab=journal  r=recompute  /=filter  q=quit"))
	b.WriteString("\n")
	return b.String()
}

func (c *Console) summaryLine() string {
	groups := c.plan.Groups()
	populated := 0
	for _, group := range groups {
		if len(group.Units) > 0 {
			populated++
		}
	}
	return phaseStyle.Render(fmt.Sprintf("%d providers across %d phases", c.plan.Len(), populated)) + "\n"
}

// detailView renders the metadata of the selected provider.
func (c *Console) detailView() string {
	item, ok := c.providers.SelectedItem().(providerItem)
	if !ok {
		return ""
	}
	meta := item.meta
	lines := []string{
		titleStyle.Render(meta.ID()),
		detailStyle.Render("phase: " + meta.Phase().String()),
	}
	if after := constraintLine(meta.ExecuteAfter(), meta.ExecuteAfterIDs()); after != "" {
		lines = append(lines, detailStyle.Render("after: "+after))
	}
	if before := constraintLine(meta.ExecuteBefore(), meta.ExecuteBeforeIDs()); before != "" {
		lines = append(lines, detailStyle.Render("before: "+before))
	}
	if tags := meta.Tags(); len(tags) > 0 {
		lines = append(lines, detailStyle.Render("tags: "+strings.Join(tags, ", ")))
	}
	if origin := meta.Origin(); origin != "" {
		lines = append(lines, detailStyle.Render("origin: "+origin))
	}
	return strings.Join(lines, "\n") + "\n"
}

func (c *Console) warningsView() string {
	warnings := c.plan.Warnings()
	if len(warnings) == 0 {
		return ""
	}
	lines := make([]string, 0, len(warnings)+1)
	lines = append(lines, warningStyle.Render(fmt.Sprintf("%d schedule warnings", len(warnings))))
	for _, warning := range warnings {
		lines = append(lines, warningStyle.Render("  "+warning.String()))
	}
	return strings.Join(lines, "\n") + "\n"
}

func (c *Console) journalView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Journal"))
	b.WriteString("\n")
	if len(c.journalLines) == 0 {
		b.WriteString(dimStyle.Render("journal is empty"))
		b.WriteString("\n")
	} else {
		if c.journalTotal > len(c.journalLines) {
			b.WriteString(dimStyle.Render(fmt.Sprintf("… %d earlier entries", c.journalTotal-len(c.journalLines))))
			b.WriteString("\n")
		}
		for _, line := range c.journalLines {
			b.WriteString(detailStyle.Render(line))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("tab=schedule  r=refresh  q=quit"))
	b.WriteString("\n")
	return b.String()
}

func constraintLine(refs []provider.Ref, ids []string) string {
	parts := make([]string, 0, len(refs)+len(ids))
	for _, ref := range refs {
		if !ref.IsZero() {
			parts = append(parts, ref.String())
		}
	}
	parts = append(parts, ids...)
	return strings.Join(parts, ", ")
}

func listHeight(total int) int {
	// Reserve room for the summary, detail pane, and key hints.
	height := total - 12
	if height < 5 {
		height = 5
	}
	return height
}
