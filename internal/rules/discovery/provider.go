// Package discovery inventories the source tree. It runs in the discovery
// phase, before any provider that inspects individual files.
package discovery

import (
	"context"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"github.com/jonathanvila/windup/internal/analysis"
	"github.com/jonathanvila/windup/internal/phase"
	"github.com/jonathanvila/windup/internal/provider"
)

// ProviderID identifies the file discovery provider.
const ProviderID = "discover-files"

// Provider walks the source tree and records one file-inventory finding per
// regular file.
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
			Phase: phase.Discovery,
			Tags:  []string{"inventory"},
		}),
	}
}

// Execute records a finding for every regular file under the source root.
func (p *Provider) Execute(ctx context.Context, run *analysis.Run) error {
	count := 0
	err := analysis.WalkSource(ctx, run.Source, func(path string, d fs.DirEntry) error {
		info, err := d.Info()
		if err != nil {
			return err
		}
		count++
		run.Findings.Add(analysis.Finding{
			Provider: ProviderID,
			Category: analysis.CategoryFile,
			Path:     analysis.RelPath(run.Source, path),
			Message:  fmt.Sprintf("file (%d bytes)", info.Size()),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("discovery: walk %s: %w", run.Source, err)
	}
	run.Log.Debug("discovery complete", zap.Int("files", count))
	return nil
}
