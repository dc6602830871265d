package ruleset

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// File pairs the parsed rules of one ruleset file with their on-disk source.
type File struct {
	Rules []Definition
	Path  string
}

type rulesetDocument struct {
	Rules []Definition `yaml:"rules"`
}

// ParseRulesetYAML decodes and validates a ruleset payload: a document with
// a top-level "rules" list.
func ParseRulesetYAML(data []byte) ([]Definition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("ruleset: payload is empty")
	}
	var doc rulesetDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("ruleset: decode rules: %w", err)
	}
	if len(doc.Rules) == 0 {
		return nil, fmt.Errorf("ruleset: no rules declared")
	}
	out := make([]Definition, 0, len(doc.Rules))
	for idx, def := range doc.Rules {
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("rules[%d]: %w", idx, err)
		}
		out = append(out, def.Normalized())
	}
	return out, nil
}

// LoadRulesetFile reads a YAML file from disk and returns its parsed rules.
func LoadRulesetFile(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("ruleset: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("ruleset: %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("ruleset: read %s: %w", path, err)
	}
	rules, err := ParseRulesetYAML(data)
	if err != nil {
		return File{}, fmt.Errorf("ruleset: %s: %w", path, err)
	}
	return File{Rules: rules, Path: filepath.Clean(path)}, nil
}

// LoadRulesetDir scans a directory for *.yaml rule files and returns them in
// lexical path order. Missing directories are treated as "no rules" to
// simplify startup.
func LoadRulesetDir(dir string) ([]File, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("ruleset: read %s: %w", trimmed, err)
	}
	var files []File
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !isYAMLFile(name) || name == ManifestFilename {
			continue
		}
		file, err := LoadRulesetFile(filepath.Join(trimmed, name))
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	if len(files) == 0 {
		return nil, nil
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func isYAMLFile(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}
