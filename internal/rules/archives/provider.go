// Package archives detects Java deployment archives in the source tree and
// records what they contain. It declares its dependency on the discovery
// provider by implementation reference.
package archives

import (
	"archive/zip"
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/jonathanvila/windup/internal/analysis"
	"github.com/jonathanvila/windup/internal/phase"
	"github.com/jonathanvila/windup/internal/provider"
	"github.com/jonathanvila/windup/internal/rules/discovery"
)

// ProviderID identifies the archive scanning provider.
const ProviderID = "scan-archives"

// Provider opens .jar/.war/.ear archives and records entry-count findings.
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
			Phase: phase.ArchiveExtraction,
			After: []provider.Ref{provider.RefOf((*discovery.Provider)(nil))},
			Tags:  []string{"archive"},
		}),
	}
}

// Execute records a finding per archive with its entry count and a finding
// per nested archive entry.
func (p *Provider) Execute(ctx context.Context, run *analysis.Run) error {
	return analysis.WalkSource(ctx, run.Source, func(path string, d fs.DirEntry) error {
		if !isArchive(path) {
			return nil
		}
		rel := analysis.RelPath(run.Source, path)
		reader, err := zip.OpenReader(path)
		if err != nil {
			run.Findings.Add(analysis.Finding{
				Provider: ProviderID,
				Category: analysis.CategoryArchive,
				Path:     rel,
				Message:  fmt.Sprintf("unreadable archive: %v", err),
				Tags:     []string{"corrupt"},
			})
			return nil
		}
		defer reader.Close()
		nested := 0
		for _, entry := range reader.File {
			if isArchive(entry.Name) {
				nested++
				run.Findings.Add(analysis.Finding{
					Provider: ProviderID,
					Category: analysis.CategoryArchive,
					Path:     rel,
					Message:  fmt.Sprintf("nested archive %s", entry.Name),
					Tags:     []string{"nested"},
				})
			}
		}
		run.Findings.Add(analysis.Finding{
			Provider: ProviderID,
			Category: analysis.CategoryArchive,
			Path:     rel,
			Message:  fmt.Sprintf("archive with %d entries (%d nested)", len(reader.File), nested),
		})
		return nil
	})
}

func isArchive(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jar", ".war", ".ear":
		return true
	default:
		return false
	}
}
