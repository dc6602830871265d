// Package config handles the .windup workspace directory and the project
// configuration file driving an analysis run.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathanvila/windup/internal/phase"
)

const (
	// WindupDir is the name of the workspace directory created in each
	// project root.
	WindupDir = ".windup"

	defaultParallelism = 1
)

const defaultConfigYAML = `# windup project configuration
version: 1

# Directory analyzed when no source argument is given.
source: .

# Ruleset directories, relative to the project root. Each may carry a
# windup-rulesets.yaml manifest describing its contents.
rulesets:
  - rulesets

# Where reports and run records are written, relative to the project root.
output: .windup/reports

# Providers inside one phase with no ordering relation may run concurrently
# up to this limit. 1 means strictly sequential execution.
parallel: 1

# Uncomment to replace the standard phase catalog. The first entry runs
# first; default names the phase assigned to providers that declare none.
# phases:
#   order: [discovery, analysis, report]
#   default: analysis
`

// PhasesConfig optionally replaces the standard phase catalog.
type PhasesConfig struct {
	Order   []string `yaml:"order"`
	Default string   `yaml:"default"`
}

// ProjectConfig models .windup/config.yaml.
type ProjectConfig struct {
	Version  int          `yaml:"version"`
	Source   string       `yaml:"source"`
	Rulesets []string     `yaml:"rulesets"`
	Output   string       `yaml:"output"`
	Parallel int          `yaml:"parallel"`
	Phases   PhasesConfig `yaml:"phases,omitempty"`
}

// Config holds the runtime configuration for one windup invocation.
type Config struct {
	// ProjectDir is the directory the user ran windup from.
	ProjectDir string

	// WorkspaceDir is ProjectDir/.windup.
	WorkspaceDir string

	Project ProjectConfig
}

// Init scaffolds the workspace directory structure and writes the default
// config file when none exists.
//
// Structure created:
//
//	.windup/
//	├── config.yaml
//	├── runs/        <- per-run reports written by the engine
//	├── reports/     <- report artifacts
//	└── journal.log  <- appended by the engine as runs progress
func Init(projectDir string) error {
	workspace := filepath.Join(projectDir, WindupDir)
	dirs := []string{
		filepath.Join(workspace, "runs"),
		filepath.Join(workspace, "reports"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: scaffold workspace: %w", err)
		}
	}
	return ensureConfigFile(filepath.Join(workspace, "config.yaml"))
}

// Load reads the project configuration, merging the config file over the
// defaults and environment overrides over both. A missing config file is
// not an error.
func Load(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:   projectDir,
		WorkspaceDir: filepath.Join(projectDir, WindupDir),
		Project:      defaultProjectConfig(),
	}
	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.Project.normalize()
	if err := cfg.Project.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// ConfigPath returns the on-disk location for the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.WorkspaceDir, "config.yaml")
}

// SourceDir returns the absolute directory analyzed by default.
func (c *Config) SourceDir() string {
	return resolvePath(c.ProjectDir, c.Project.Source)
}

// OutputDir returns the absolute directory reports are written to.
func (c *Config) OutputDir() string {
	return resolvePath(c.ProjectDir, c.Project.Output)
}

// RunsDir returns the directory run records are persisted under.
func (c *Config) RunsDir() string {
	return filepath.Join(c.WorkspaceDir, "runs")
}

// JournalPath returns the location of the run journal.
func (c *Config) JournalPath() string {
	return filepath.Join(c.WorkspaceDir, "journal.log")
}

// RulesetDirs returns the absolute ruleset directories in declaration order.
func (c *Config) RulesetDirs() []string {
	out := make([]string, 0, len(c.Project.Rulesets))
	for _, dir := range c.Project.Rulesets {
		out = append(out, resolvePath(c.ProjectDir, dir))
	}
	return out
}

// Parallelism returns the within-phase concurrency limit.
func (c *Config) Parallelism() int {
	return c.Project.Parallel
}

// Catalog materializes the configured phase catalog, falling back to the
// standard one when the config declares no custom phases.
func (c *Config) Catalog() (*phase.Catalog, error) {
	if len(c.Project.Phases.Order) == 0 {
		return phase.Standard(), nil
	}
	ordered := make([]phase.Phase, 0, len(c.Project.Phases.Order))
	for _, name := range c.Project.Phases.Order {
		ordered = append(ordered, phase.Phase(name))
	}
	def := phase.Phase(c.Project.Phases.Default)
	if c.Project.Phases.Default == "" {
		def = ordered[0]
	}
	catalog, err := phase.NewCatalog(ordered, def)
	if err != nil {
		return nil, fmt.Errorf("config: phases: %w", err)
	}
	return catalog, nil
}

func (c *Config) loadFile() error {
	path := c.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	parsed.applyDefaults()
	c.Project = parsed
	return nil
}

// applyEnv layers WINDUP_* environment overrides over the loaded config.
func (c *Config) applyEnv() error {
	if out := strings.TrimSpace(os.Getenv("WINDUP_OUTPUT_DIR")); out != "" {
		c.Project.Output = out
	}
	if rulesets := strings.TrimSpace(os.Getenv("WINDUP_RULESETS")); rulesets != "" {
		c.Project.Rulesets = splitList(rulesets)
	}
	if par := strings.TrimSpace(os.Getenv("WINDUP_PARALLEL")); par != "" {
		n, err := strconv.Atoi(par)
		if err != nil {
			return fmt.Errorf("config: WINDUP_PARALLEL %q is not a number", par)
		}
		c.Project.Parallel = n
	}
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version:  1,
		Source:   ".",
		Rulesets: []string{"rulesets"},
		Output:   filepath.Join(WindupDir, "reports"),
		Parallel: defaultParallelism,
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.Source == "" {
		pc.Source = "."
	}
	if pc.Output == "" {
		pc.Output = filepath.Join(WindupDir, "reports")
	}
	if pc.Parallel == 0 {
		pc.Parallel = defaultParallelism
	}
}

func (pc *ProjectConfig) normalize() {
	pc.Source = strings.TrimSpace(pc.Source)
	pc.Output = strings.TrimSpace(pc.Output)
	cleaned := make([]string, 0, len(pc.Rulesets))
	for _, dir := range pc.Rulesets {
		if trimmed := strings.TrimSpace(dir); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	pc.Rulesets = cleaned
	order := make([]string, 0, len(pc.Phases.Order))
	for _, name := range pc.Phases.Order {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			order = append(order, trimmed)
		}
	}
	pc.Phases.Order = order
	pc.Phases.Default = strings.TrimSpace(pc.Phases.Default)
}

func (pc ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("version must be >= 1")
	}
	if pc.Source == "" {
		return fmt.Errorf("source is required")
	}
	if pc.Output == "" {
		return fmt.Errorf("output is required")
	}
	if pc.Parallel < 1 {
		return fmt.Errorf("parallel must be >= 1")
	}
	if pc.Phases.Default != "" && len(pc.Phases.Order) == 0 {
		return fmt.Errorf("phases.default requires phases.order")
	}
	return nil
}

func splitList(value string) []string {
	parts := strings.Split(value, string(os.PathListSeparator))
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return base
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
