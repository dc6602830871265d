package ruleset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFilename names the repository manifest inside a rulesets
// directory.
const ManifestFilename = "windup-rulesets.yaml"

// Manifest models the windup-rulesets.yaml schema.
type Manifest struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Rules       string `yaml:"rules,omitempty"`
	GoRules     string `yaml:"go_rules,omitempty"`
}

// Repository represents a loaded rulesets directory.
type Repository struct {
	Root     string
	Manifest Manifest
}

// Load reads and validates a repository manifest from the provided
// directory. A directory without a manifest is a valid repository holding
// its rule files at the top level.
func Load(root string) (*Repository, error) {
	repo := &Repository{
		Root:     filepath.Clean(root),
		Manifest: Manifest{Name: filepath.Base(filepath.Clean(root))},
	}
	manifestPath := filepath.Join(root, ManifestFilename)
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return repo, nil
		}
		return nil, fmt.Errorf("ruleset: read %s: %w", manifestPath, err)
	}
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("ruleset: parse %s: %w", manifestPath, err)
	}
	manifest.normalize()
	if err := manifest.validate(); err != nil {
		return nil, fmt.Errorf("ruleset: %s: %w", manifestPath, err)
	}
	repo.Manifest = manifest
	return repo, nil
}

// ResolvePath converts a manifest-relative path into an absolute path.
func (r *Repository) ResolvePath(rel string) string {
	trimmed := strings.TrimSpace(rel)
	if trimmed == "" {
		return r.Root
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Join(r.Root, filepath.FromSlash(trimmed))
}

// RulesDir returns the directory holding YAML rule files.
func (r *Repository) RulesDir() string {
	return r.ResolvePath(r.Manifest.Rules)
}

// GoRulesDir returns the directory holding Go rule files.
func (r *Repository) GoRulesDir() string {
	return r.ResolvePath(r.Manifest.GoRules)
}

// Discover aggregates the repository's YAML and Go rule files.
func (r *Repository) Discover() ([]File, error) {
	yamlFiles, err := LoadRulesetDir(r.RulesDir())
	if err != nil {
		return nil, err
	}
	goDir := r.GoRulesDir()
	if r.Manifest.GoRules == "" && r.Manifest.Rules == "" {
		// Top-level repository: Go rules sit beside the YAML files.
		goDir = r.Root
	}
	goFiles, err := LoadGoRulesetDir(goDir)
	if err != nil {
		return nil, err
	}
	return append(yamlFiles, goFiles...), nil
}

func (m *Manifest) normalize() {
	m.Name = strings.TrimSpace(m.Name)
	m.Description = strings.TrimSpace(m.Description)
	m.Rules = cleanRelPath(m.Rules)
	m.GoRules = cleanRelPath(m.GoRules)
}

func (m Manifest) validate() error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

func cleanRelPath(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	return filepath.Clean(filepath.FromSlash(trimmed))
}
