package ruleset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathanvila/windup/internal/analysis"
	"github.com/jonathanvila/windup/internal/phase"
	"github.com/jonathanvila/windup/internal/provider"
)

const rulesYAML = `rules:
  - id: deprecated-ejb
    phase: migration-rules
    after: [java-imports]
    tags: [ejb]
    when:
      glob: "**/*.java"
      contains: "javax.ejb"
    finding:
      category: java-type-reference
      message: "javax.ejb types must migrate to jakarta.ejb"
  - id: web-xml-present
    when:
      glob: "**/web.xml"
    finding:
      category: xml-resource
      message: "web.xml deployment descriptor found"
`

func TestParseRulesetYAML(t *testing.T) {
	rules, err := ParseRulesetYAML([]byte(rulesYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if rules[0].ID != "deprecated-ejb" || rules[0].After[0] != "java-imports" {
		t.Fatalf("unexpected first rule: %+v", rules[0])
	}
}

func TestParseRulesetYAMLRejectsInvalid(t *testing.T) {
	if _, err := ParseRulesetYAML(nil); err == nil {
		t.Fatal("expected error for empty payload")
	}
	if _, err := ParseRulesetYAML([]byte("rules: []\n")); err == nil {
		t.Fatal("expected error for empty rules list")
	}
	bad := "rules:\n  - id: r1\n    when:\n      glob: \"*.java\"\n"
	if _, err := ParseRulesetYAML([]byte(bad)); err == nil || !strings.Contains(err.Error(), "finding.category") {
		t.Fatalf("error = %v, want finding.category complaint", err)
	}
}

func TestLoadRulesetDirLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	single := "rules:\n  - id: %s\n    when:\n      glob: \"*.java\"\n    finding:\n      category: file\n      message: m\n"
	for _, name := range []string{"b.yaml", "a.yaml"} {
		id := strings.TrimSuffix(name, ".yaml") + "-rule"
		content := strings.Replace(single, "%s", id, 1)
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	files, err := LoadRulesetDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if filepath.Base(files[0].Path) != "a.yaml" {
		t.Fatalf("files not in lexical order: %s first", files[0].Path)
	}
}

func TestLoadRulesetDirMissingIsEmpty(t *testing.T) {
	files, err := LoadRulesetDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if files != nil {
		t.Fatalf("expected no files, got %d", len(files))
	}
}

func TestRegisterRulesRejectsDuplicates(t *testing.T) {
	reg := provider.NewRegistry(phase.Standard())
	rules, err := ParseRulesetYAML([]byte(rulesYAML))
	if err != nil {
		t.Fatal(err)
	}
	a := File{Rules: rules, Path: "a.yaml"}
	b := File{Rules: rules[:1], Path: "b.yaml"}
	if err := RegisterRules(reg, a, b); err == nil || !strings.Contains(err.Error(), "duplicate rule id") {
		t.Fatalf("error = %v, want duplicate rule id", err)
	}
}

func TestRegisteredRuleCarriesFileConstraints(t *testing.T) {
	reg := provider.NewRegistry(phase.Standard())
	rules, err := ParseRulesetYAML([]byte(rulesYAML))
	if err != nil {
		t.Fatal(err)
	}
	if err := RegisterRules(reg, File{Rules: rules, Path: "core.yaml"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	meta, ok := reg.Metadata("deprecated-ejb")
	if !ok {
		t.Fatal("rule not registered")
	}
	if meta.Phase() != phase.MigrationRules {
		t.Fatalf("phase = %s", meta.Phase())
	}
	if got := meta.ExecuteAfterIDs(); len(got) != 1 || got[0] != "java-imports" {
		t.Fatalf("afterIDs = %v", got)
	}
	if meta.Origin() != "core.yaml" {
		t.Fatalf("origin = %q", meta.Origin())
	}
	// A rule with no declared phase lands in the catalog default.
	meta, _ = reg.Metadata("web-xml-present")
	if meta.Phase() != phase.Standard().Default() {
		t.Fatalf("default phase = %s", meta.Phase())
	}
}

func TestRuleExecuteRecordsFindings(t *testing.T) {
	source := t.TempDir()
	java := "package app;\n\nimport javax.ejb.Stateless;\n\npublic class App {}\n"
	if err := os.MkdirAll(filepath.Join(source, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(source, "src", "App.java"), []byte(java), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(source, "src", "web.xml"), []byte("<web-app/>\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rules, err := ParseRulesetYAML([]byte(rulesYAML))
	if err != nil {
		t.Fatal(err)
	}
	run := analysis.NewRun("run-1", source, nil, nil)
	for _, def := range rules {
		rule, err := NewRule(def, "core.yaml")
		if err != nil {
			t.Fatal(err)
		}
		if err := rule.Execute(context.Background(), run); err != nil {
			t.Fatalf("execute %s: %v", def.ID, err)
		}
	}
	all := run.Findings.All()
	if len(all) != 2 {
		t.Fatalf("findings = %+v", all)
	}
	if all[0].Path != "src/App.java" || all[0].Line != 3 {
		t.Fatalf("content finding = %+v", all[0])
	}
	if all[1].Path != "src/web.xml" || all[1].Line != 0 {
		t.Fatalf("file finding = %+v", all[1])
	}
}

func TestRepositoryManifest(t *testing.T) {
	root := t.TempDir()
	manifest := "name: core-rules\ndescription: stock migration rules\nrules: yaml\ngo_rules: go\n"
	if err := os.WriteFile(filepath.Join(root, ManifestFilename), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "yaml"), 0o755); err != nil {
		t.Fatal(err)
	}
	content := "rules:\n  - id: r1\n    when:\n      glob: \"*.java\"\n    finding:\n      category: file\n      message: m\n"
	if err := os.WriteFile(filepath.Join(root, "yaml", "core.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	repo, err := Load(root)
	if err != nil {
		t.Fatalf("load repository: %v", err)
	}
	if repo.Manifest.Name != "core-rules" {
		t.Fatalf("manifest = %+v", repo.Manifest)
	}
	files, err := repo.Discover()
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(files) != 1 || files[0].Rules[0].ID != "r1" {
		t.Fatalf("files = %+v", files)
	}
}

func TestLintFileCollectsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	bad := `rules:
  - id: r1
    phase: not-a-phase
    when:
      glob: "*.java"
    finding:
      category: file
      message: m
  - id: r1
    when:
      glob: "*.xml"
    finding:
      category: xml-resource
      message: m
  - id: r3
    when:
      glob: "["
    finding:
      category: file
      message: m
`
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	report := LintFile(path, phase.Standard())
	if report.IsValid() {
		t.Fatal("expected problems")
	}
	if len(report.Problems) != 3 {
		t.Fatalf("problems = %v", report.Problems)
	}
}
