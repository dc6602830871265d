// Package xmlres classifies XML resources by their root element. It shares
// the initial-analysis phase with the Java scanner and declares no relation
// to it, so their relative order falls to the lexical tie-break.
package xmlres

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathanvila/windup/internal/analysis"
	"github.com/jonathanvila/windup/internal/phase"
	"github.com/jonathanvila/windup/internal/provider"
)

// ProviderID identifies the XML resource classifier.
const ProviderID = "xml-resources"

// Provider records one xml-resource finding per .xml file, naming its root
// element and namespace.
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
			Phase: phase.InitialAnalysis,
			Tags:  []string{"xml"},
		}),
	}
}

// Execute sniffs the root element of every .xml file under the source root.
func (p *Provider) Execute(ctx context.Context, run *analysis.Run) error {
	return analysis.WalkSource(ctx, run.Source, func(path string, d fs.DirEntry) error {
		if strings.ToLower(filepath.Ext(path)) != ".xml" {
			return nil
		}
		rel := analysis.RelPath(run.Source, path)
		root, ns, err := sniffRoot(path)
		if err != nil {
			run.Findings.Add(analysis.Finding{
				Provider: ProviderID,
				Category: analysis.CategoryXMLResource,
				Path:     rel,
				Message:  fmt.Sprintf("malformed xml: %v", err),
				Tags:     []string{"malformed"},
			})
			return nil
		}
		message := fmt.Sprintf("root element <%s>", root)
		if ns != "" {
			message = fmt.Sprintf("root element <%s> (xmlns %s)", root, ns)
		}
		run.Findings.Add(analysis.Finding{
			Provider: ProviderID,
			Category: analysis.CategoryXMLResource,
			Path:     rel,
			Message:  message,
		})
		return nil
	})
}

func sniffRoot(path string) (root, ns string, err error) {
	file, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer file.Close()
	decoder := xml.NewDecoder(file)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return "", "", fmt.Errorf("no root element")
		}
		if err != nil {
			return "", "", err
		}
		if start, ok := token.(xml.StartElement); ok {
			return start.Name.Local, start.Name.Space, nil
		}
	}
}
