// Package javasrc scans Java source files for package declarations and
// imports, recording a type reference per hit. It depends on the discovery
// provider by string id, the resolution style rule files use.
package javasrc

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathanvila/windup/internal/analysis"
	"github.com/jonathanvila/windup/internal/phase"
	"github.com/jonathanvila/windup/internal/provider"
	"github.com/jonathanvila/windup/internal/rules/discovery"
)

// ProviderID identifies the Java import scanner.
const ProviderID = "java-imports"

// Provider records java-type-reference findings for package and import
// statements in .java files.
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
			Phase:    phase.InitialAnalysis,
			AfterIDs: []string{discovery.ProviderID},
			Tags:     []string{"java"},
		}),
	}
}

// Execute scans every .java file under the source root.
func (p *Provider) Execute(ctx context.Context, run *analysis.Run) error {
	return analysis.WalkSource(ctx, run.Source, func(path string, d fs.DirEntry) error {
		if strings.ToLower(filepath.Ext(path)) != ".java" {
			return nil
		}
		return p.scanFile(run, path)
	})
}

func (p *Provider) scanFile(run *analysis.Run, path string) error {
	rel := analysis.RelPath(run.Source, path)
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("javasrc: open %s: %w", rel, err)
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		ref, kind := parseTypeReference(text)
		if ref == "" {
			continue
		}
		run.Findings.Add(analysis.Finding{
			Provider: ProviderID,
			Category: analysis.CategoryTypeReference,
			Path:     rel,
			Line:     line,
			Message:  fmt.Sprintf("%s %s", kind, ref),
			Tags:     []string{kind},
		})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("javasrc: scan %s: %w", rel, err)
	}
	return nil
}

// parseTypeReference extracts the referenced name from a package or import
// statement. Anything else yields an empty reference.
func parseTypeReference(line string) (ref, kind string) {
	switch {
	case strings.HasPrefix(line, "package "):
		kind = "package"
		ref = strings.TrimPrefix(line, "package ")
	case strings.HasPrefix(line, "import static "):
		kind = "import"
		ref = strings.TrimPrefix(line, "import static ")
	case strings.HasPrefix(line, "import "):
		kind = "import"
		ref = strings.TrimPrefix(line, "import ")
	default:
		return "", ""
	}
	ref = strings.TrimSuffix(strings.TrimSpace(ref), ";")
	if ref == "" {
		return "", ""
	}
	return ref, kind
}
