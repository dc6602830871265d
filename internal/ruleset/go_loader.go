package ruleset

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"gopkg.in/yaml.v3"
)

const goRuleFuncName = "RuleDefinitions"

// LoadGoRulesetDir evaluates every .go file in dir with the yaegi
// interpreter and collects rules declared via RuleDefinitions(). The
// declarations are re-marshaled through YAML into the Definition schema, so
// Go rule files and YAML rule files validate identically.
func LoadGoRulesetDir(dir string) ([]File, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("ruleset: read %s: %w", trimmed, err)
	}
	var files []File
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) != ".go" {
			continue
		}
		file, err := loadGoRulesetFile(filepath.Join(trimmed, entry.Name()))
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

func loadGoRulesetFile(path string) (File, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("ruleset: read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return File{}, fmt.Errorf("ruleset: %s is empty", path)
	}
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return File{}, fmt.Errorf("ruleset: interpreter for %s: %w", path, err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return File{}, fmt.Errorf("ruleset: interpret %s: %w", path, err)
	}
	fnValue, err := i.Eval(goRuleFuncName)
	if err != nil {
		return File{}, fmt.Errorf("ruleset: %s must define %s() ([]map[string]any, error): %w", path, goRuleFuncName, err)
	}
	raws, callErr := invokeRuleFunc(fnValue)
	if callErr != nil {
		return File{}, fmt.Errorf("ruleset: %s: %w", path, callErr)
	}
	rules := make([]Definition, 0, len(raws))
	for idx, raw := range raws {
		payload, err := yaml.Marshal(raw)
		if err != nil {
			return File{}, fmt.Errorf("ruleset: %s rule[%d]: %w", path, idx, err)
		}
		var def Definition
		if err := yaml.Unmarshal(payload, &def); err != nil {
			return File{}, fmt.Errorf("ruleset: %s rule[%d]: %w", path, idx, err)
		}
		if err := def.Validate(); err != nil {
			return File{}, fmt.Errorf("ruleset: %s rule[%d]: %w", path, idx, err)
		}
		rules = append(rules, def.Normalized())
	}
	return File{Rules: rules, Path: filepath.Clean(path)}, nil
}

func invokeRuleFunc(value reflect.Value) ([]map[string]any, error) {
	if !value.IsValid() {
		return nil, fmt.Errorf("missing %s function", goRuleFuncName)
	}
	fn := value
	if fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", goRuleFuncName)
	}
	results := fn.Call(nil)
	if len(results) == 0 || len(results) > 2 {
		return nil, fmt.Errorf("%s must return ([]map[string]any[, error])", goRuleFuncName)
	}
	defsVal := results[0]
	if len(results) == 2 {
		if !results[1].IsNil() {
			if e, ok := results[1].Interface().(error); ok && e != nil {
				return nil, e
			}
			return nil, fmt.Errorf("%s returned non-error second value", goRuleFuncName)
		}
	}
	defs, ok := defsVal.Interface().([]map[string]any)
	if ok {
		return defs, nil
	}
	if defsVal.Kind() == reflect.Slice {
		result := make([]map[string]any, defsVal.Len())
		for i := 0; i < defsVal.Len(); i++ {
			entry := defsVal.Index(i).Interface()
			m, ok := entry.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s[%d] is not map[string]any", goRuleFuncName, i)
			}
			result[i] = m
		}
		return result, nil
	}
	return nil, fmt.Errorf("%s must return []map[string]any", goRuleFuncName)
}
