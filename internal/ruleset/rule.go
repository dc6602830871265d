package ruleset

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/jonathanvila/windup/internal/analysis"
	"github.com/jonathanvila/windup/internal/phase"
	"github.com/jonathanvila/windup/internal/provider"
)

// Rule is the provider materialized from one file-declared definition. Every
// Rule shares the same implementing type, so sibling references from rule
// files travel through the id-based constraint sets.
type Rule struct {
	def     Definition
	origin  string
	pattern *regexp.Regexp
}

// NewRule materializes a definition loaded from origin into a provider.
func NewRule(def Definition, origin string) (*Rule, error) {
	normalized := def.Normalized()
	if err := normalized.Validate(); err != nil {
		return nil, err
	}
	rule := &Rule{def: normalized, origin: origin}
	if normalized.When.Pattern != "" {
		compiled, err := regexp.Compile(normalized.When.Pattern)
		if err != nil {
			return nil, fmt.Errorf("ruleset %s: when.pattern: %w", normalized.ID, err)
		}
		rule.pattern = compiled
	}
	return rule, nil
}

// ID implements provider.Provider.
func (r *Rule) ID() string {
	return r.def.ID
}

// Declaration implements provider.Declarer with the file-declared
// constraints.
func (r *Rule) Declaration() provider.Declaration {
	return provider.Declaration{
		Phase:     phase.Phase(r.def.Phase),
		AfterIDs:  append([]string{}, r.def.After...),
		BeforeIDs: append([]string{}, r.def.Before...),
		Tags:      append([]string{}, r.def.Tags...),
	}
}

// Origin implements provider.Originator.
func (r *Rule) Origin() string {
	return r.origin
}

// Definition returns the rule's normalized definition.
func (r *Rule) Definition() Definition {
	return r.def
}

// Execute walks the source tree and records the declared finding for every
// file (or line, for content conditions) the rule matches.
func (r *Rule) Execute(ctx context.Context, run *analysis.Run) error {
	return analysis.WalkSource(ctx, run.Source, func(path string, d fs.DirEntry) error {
		rel := analysis.RelPath(run.Source, path)
		if !r.def.When.Matches(rel) {
			return nil
		}
		if !r.def.When.NeedsContent() {
			run.Findings.Add(analysis.Finding{
				Provider: r.def.ID,
				Category: r.def.Finding.Category,
				Path:     rel,
				Message:  r.def.Finding.Message,
				Tags:     append([]string{}, r.def.Tags...),
			})
			return nil
		}
		return r.scanContent(path, rel, run)
	})
}

func (r *Rule) scanContent(path, rel string, run *analysis.Run) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("ruleset %s: open %s: %w", r.def.ID, rel, err)
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if r.def.When.Contains != "" && !strings.Contains(text, r.def.When.Contains) {
			continue
		}
		if r.pattern != nil && !r.pattern.MatchString(text) {
			continue
		}
		run.Findings.Add(analysis.Finding{
			Provider: r.def.ID,
			Category: r.def.Finding.Category,
			Path:     rel,
			Line:     line,
			Message:  r.def.Finding.Message,
			Tags:     append([]string{}, r.def.Tags...),
		})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("ruleset %s: scan %s: %w", r.def.ID, rel, err)
	}
	return nil
}

// RegisterRules materializes every rule in the given files and registers
// them, rejecting ids that collide across files.
func RegisterRules(reg *provider.Registry, files ...File) error {
	seen := make(map[string]string)
	for _, file := range files {
		for _, def := range file.Rules {
			if existing, ok := seen[def.ID]; ok {
				return fmt.Errorf("ruleset: duplicate rule id %s (%s and %s)", def.ID, existing, file.Path)
			}
			seen[def.ID] = file.Path
			rule, err := NewRule(def, file.Path)
			if err != nil {
				return err
			}
			if err := reg.Register(rule); err != nil {
				return fmt.Errorf("ruleset: register %s from %s: %w", def.ID, file.Path, err)
			}
		}
	}
	return nil
}
