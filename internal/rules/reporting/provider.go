// Package reporting aggregates the run's finding set into report artifacts.
// It runs in the report-generation phase and declares executeAfter ids for
// the analysis providers of earlier phases; those constraints are already
// satisfied by phase order and cost nothing.
package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jonathanvila/windup/internal/analysis"
	"github.com/jonathanvila/windup/internal/phase"
	"github.com/jonathanvila/windup/internal/provider"
	"github.com/jonathanvila/windup/internal/report"
	"github.com/jonathanvila/windup/internal/rules/archives"
	"github.com/jonathanvila/windup/internal/rules/discovery"
	"github.com/jonathanvila/windup/internal/rules/javasrc"
	"github.com/jonathanvila/windup/internal/rules/xmlres"
)

// ProviderID identifies the report writer.
const ProviderID = "analysis-report"

// Report artifacts written by this provider.
var (
	FindingsJSON = report.Ref{
		ID:          "findings-json",
		Name:        "Findings",
		Description: "Every finding recorded during the run",
		Kind:        report.KindJSON,
		Rel:         "findings.json",
	}
	SummaryDoc = report.Ref{
		ID:          "summary-md",
		Name:        "Run Summary",
		Description: "Per-category finding counts",
		Kind:        report.KindMarkdown,
		Rel:         "summary.md",
	}
)

// Provider writes findings.json and summary.md through the report store.
type Provider struct {
	provider.Base
}

// Register installs the provider into the registry.
func Register(reg *provider.Registry) {
	if reg == nil {
		return
	}
	reg.MustRegister(New())
}

// New constructs the provider with its declaration.
func New() *Provider {
	return &Provider{
		Base: provider.NewBase(ProviderID, provider.Declaration{
			Phase: phase.ReportGeneration,
			AfterIDs: []string{
				discovery.ProviderID,
				archives.ProviderID,
				javasrc.ProviderID,
				xmlres.ProviderID,
			},
			Tags: []string{"report"},
		}),
	}
}

// Execute renders the finding set into the run's report artifacts.
func (p *Provider) Execute(ctx context.Context, run *analysis.Run) error {
	if run.Reports == nil {
		return fmt.Errorf("reporting: report store is required")
	}
	findings := run.Findings.All()
	payload, err := json.Marshal(map[string]any{
		"total":    len(findings),
		"findings": findings,
	})
	if err != nil {
		return fmt.Errorf("reporting: encode findings: %w", err)
	}
	meta := report.Metadata{RunID: run.RunID, Provider: ProviderID}
	if err := run.Reports.Write(FindingsJSON, payload, meta); err != nil {
		return fmt.Errorf("reporting: write findings.json: %w", err)
	}
	if err := run.Reports.Write(SummaryDoc, summarize(run), meta); err != nil {
		return fmt.Errorf("reporting: write summary.md: %w", err)
	}
	return nil
}

func summarize(run *analysis.Run) []byte {
	counts := run.Findings.CountByCategory()
	categories := make([]string, 0, len(counts))
	for category := range counts {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	var b strings.Builder
	fmt.Fprintf(&b, "# Analysis Summary\n\n")
	fmt.Fprintf(&b, "Run `%s` recorded %d findings.\n\n", run.RunID, run.Findings.Count())
	if len(categories) > 0 {
		fmt.Fprintf(&b, "| Category | Findings |\n|---|---|\n")
		for _, category := range categories {
			fmt.Fprintf(&b, "| %s | %d |\n", category, counts[category])
		}
	}
	return []byte(b.String())
}
