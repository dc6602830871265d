// Package ruleset loads rule providers from data files. A ruleset directory
// carries YAML rule files, optionally Go rule files evaluated at load time,
// and a manifest describing the collection. Each rule materializes as one
// provider whose scheduling constraints come from the file, referencing
// sibling rules by string id — implementation identity is not visible from
// data files.
package ruleset

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/jonathanvila/windup/internal/phase"
)

// Condition selects the source files a rule applies to. Glob matches the
// slash-separated path relative to the source root; a leading "**/" matches
// at any depth. Contains and Pattern narrow the match to file content;
// Pattern is a Go regular expression.
type Condition struct {
	Glob     string `json:"glob" yaml:"glob"`
	Contains string `json:"contains,omitempty" yaml:"contains,omitempty"`
	Pattern  string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// FindingSpec declares the finding a rule records for each match.
type FindingSpec struct {
	Category string `json:"category" yaml:"category"`
	Message  string `json:"message" yaml:"message"`
}

// Definition describes one executable rule loaded from a ruleset file.
//
// The struct mirrors the on-disk schema and is intentionally narrow so the
// loader can validate rule metadata before wiring it into the registry.
type Definition struct {
	ID          string      `json:"id" yaml:"id"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Phase       string      `json:"phase,omitempty" yaml:"phase,omitempty"`
	After       []string    `json:"after,omitempty" yaml:"after,omitempty"`
	Before      []string    `json:"before,omitempty" yaml:"before,omitempty"`
	Tags        []string    `json:"tags,omitempty" yaml:"tags,omitempty"`
	When        Condition   `json:"when" yaml:"when"`
	Finding     FindingSpec `json:"finding" yaml:"finding"`
}

// Normalized returns a trimmed, copy-on-write variant of the definition.
func (def Definition) Normalized() Definition {
	clone := Definition{
		ID:          strings.TrimSpace(def.ID),
		Description: strings.TrimSpace(def.Description),
		Phase:       strings.TrimSpace(def.Phase),
		When: Condition{
			Glob:     strings.TrimSpace(def.When.Glob),
			Contains: def.When.Contains,
			Pattern:  strings.TrimSpace(def.When.Pattern),
		},
		Finding: FindingSpec{
			Category: strings.TrimSpace(def.Finding.Category),
			Message:  strings.TrimSpace(def.Finding.Message),
		},
	}
	clone.After = trimmedList(def.After)
	clone.Before = trimmedList(def.Before)
	clone.Tags = trimmedList(def.Tags)
	return clone
}

// Validate ensures the rule definition is well-formed.
func (def Definition) Validate() error {
	normalized := def.Normalized()
	if normalized.ID == "" {
		return fmt.Errorf("ruleset: id is required")
	}
	if normalized.When.Glob == "" {
		return fmt.Errorf("ruleset %s: when.glob is required", normalized.ID)
	}
	if err := validateGlob(normalized.When.Glob); err != nil {
		return fmt.Errorf("ruleset %s: when.glob: %w", normalized.ID, err)
	}
	if normalized.When.Pattern != "" {
		if _, err := regexp.Compile(normalized.When.Pattern); err != nil {
			return fmt.Errorf("ruleset %s: when.pattern: %w", normalized.ID, err)
		}
	}
	if normalized.Finding.Category == "" {
		return fmt.Errorf("ruleset %s: finding.category is required", normalized.ID)
	}
	if normalized.Finding.Message == "" {
		return fmt.Errorf("ruleset %s: finding.message is required", normalized.ID)
	}
	for idx, ref := range normalized.After {
		if ref == normalized.ID {
			return fmt.Errorf("ruleset %s: after[%d] references the rule itself", normalized.ID, idx)
		}
	}
	for idx, ref := range normalized.Before {
		if ref == normalized.ID {
			return fmt.Errorf("ruleset %s: before[%d] references the rule itself", normalized.ID, idx)
		}
	}
	return nil
}

// PhaseOrDefault resolves the declared phase, falling back to the catalog
// default when the rule declares none.
func (def Definition) PhaseOrDefault(catalog *phase.Catalog) phase.Phase {
	if strings.TrimSpace(def.Phase) == "" {
		return catalog.Default()
	}
	return phase.Phase(strings.TrimSpace(def.Phase))
}

// Matches reports whether the slash-separated relative path satisfies the
// condition's glob.
func (c Condition) Matches(rel string) bool {
	pattern := strings.TrimSpace(c.Glob)
	if pattern == "" {
		return false
	}
	if ok, err := path.Match(pattern, rel); err == nil && ok {
		return true
	}
	if rest, found := strings.CutPrefix(pattern, "**/"); found {
		if ok, err := path.Match(rest, path.Base(rel)); err == nil && ok {
			return true
		}
		for i := 0; i < len(rel); i++ {
			if rel[i] == '/' {
				if ok, err := path.Match(rest, rel[i+1:]); err == nil && ok {
					return true
				}
			}
		}
	}
	return false
}

// NeedsContent reports whether the condition inspects file content.
func (c Condition) NeedsContent() bool {
	return c.Contains != "" || strings.TrimSpace(c.Pattern) != ""
}

func validateGlob(pattern string) error {
	trimmed := strings.TrimPrefix(pattern, "**/")
	if _, err := path.Match(trimmed, "probe"); err != nil {
		return err
	}
	return nil
}

func trimmedList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
