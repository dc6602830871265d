package ruleset

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jonathanvila/windup/internal/phase"
)

// Report collects every problem found in one ruleset file. Lint keeps going
// after the first problem so authors see the whole list at once.
type Report struct {
	Path     string
	Problems []error
}

// IsValid reports whether the file passed every check.
func (r Report) IsValid() bool {
	return len(r.Problems) == 0
}

// LintFile validates a single ruleset YAML file against the catalog without
// registering anything.
func LintFile(path string, catalog *phase.Catalog) Report {
	report := Report{Path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		report.Problems = append(report.Problems, fmt.Errorf("read: %w", err))
		return report
	}
	var doc rulesetDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		report.Problems = append(report.Problems, fmt.Errorf("decode: %w", err))
		return report
	}
	if len(doc.Rules) == 0 {
		report.Problems = append(report.Problems, fmt.Errorf("no rules declared"))
		return report
	}
	seen := map[string]int{}
	for idx, def := range doc.Rules {
		normalized := def.Normalized()
		if err := def.Validate(); err != nil {
			report.Problems = append(report.Problems, fmt.Errorf("rules[%d]: %w", idx, err))
		}
		if normalized.ID != "" {
			if first, dup := seen[normalized.ID]; dup {
				report.Problems = append(report.Problems, fmt.Errorf("rules[%d]: id %q duplicates rules[%d]", idx, normalized.ID, first))
			} else {
				seen[normalized.ID] = idx
			}
		}
		if normalized.Phase != "" && catalog != nil && !catalog.Contains(phase.Phase(normalized.Phase)) {
			report.Problems = append(report.Problems, fmt.Errorf("rules[%d]: unknown phase %q", idx, normalized.Phase))
		}
	}
	return report
}

// LintDir validates every YAML rule file in the repository rooted at dir,
// adding cross-file duplicate id checks. Reports come back in lexical path
// order, valid files included.
func LintDir(dir string, catalog *phase.Catalog) ([]Report, error) {
	repo, err := Load(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(repo.RulesDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("ruleset: read %s: %w", repo.RulesDir(), err)
	}
	var reports []Report
	owners := map[string]string{}
	for _, entry := range entries {
		if entry.IsDir() || !isYAMLFile(entry.Name()) || entry.Name() == ManifestFilename {
			continue
		}
		path := filepath.Join(repo.RulesDir(), entry.Name())
		report := LintFile(path, catalog)
		if report.IsValid() {
			file, err := LoadRulesetFile(path)
			if err == nil {
				for _, def := range file.Rules {
					if owner, dup := owners[def.ID]; dup {
						report.Problems = append(report.Problems, fmt.Errorf("id %q already declared in %s", def.ID, owner))
					} else {
						owners[def.ID] = path
					}
				}
			}
		}
		reports = append(reports, report)
	}
	return reports, nil
}
