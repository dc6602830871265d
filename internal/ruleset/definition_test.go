package ruleset

import (
	"strings"
	"testing"
)

func validDefinition() Definition {
	return Definition{
		ID: "deprecated-ejb",
		When: Condition{
			Glob:     "**/*.java",
			Contains: "javax.ejb",
		},
		Finding: FindingSpec{
			Category: "java-type-reference",
			Message:  "javax.ejb types must migrate to jakarta.ejb",
		},
	}
}

func TestDefinitionValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Definition)
		wantErr string
	}{
		{"valid", func(d *Definition) {}, ""},
		{"missing id", func(d *Definition) { d.ID = " " }, "id is required"},
		{"missing glob", func(d *Definition) { d.When.Glob = "" }, "when.glob is required"},
		{"bad glob", func(d *Definition) { d.When.Glob = "[" }, "when.glob"},
		{"bad pattern", func(d *Definition) { d.When.Pattern = "(" }, "when.pattern"},
		{"missing category", func(d *Definition) { d.Finding.Category = "" }, "finding.category is required"},
		{"missing message", func(d *Definition) { d.Finding.Message = "" }, "finding.message is required"},
		{"self after", func(d *Definition) { d.After = []string{"deprecated-ejb"} }, "references the rule itself"},
		{"self before", func(d *Definition) { d.Before = []string{" deprecated-ejb "} }, "references the rule itself"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			def := validDefinition()
			tc.mutate(&def)
			err := def.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error = %v, want substring %q", err, tc.wantErr)
			}
		})
	}
}

func TestConditionMatches(t *testing.T) {
	cases := []struct {
		glob string
		rel  string
		want bool
	}{
		{"**/*.java", "src/main/App.java", true},
		{"**/*.java", "App.java", true},
		{"**/*.java", "src/App.go", false},
		{"*.xml", "pom.xml", true},
		{"*.xml", "conf/web.xml", false},
		{"**/web.xml", "src/webapp/WEB-INF/web.xml", true},
	}
	for _, tc := range cases {
		c := Condition{Glob: tc.glob}
		if got := c.Matches(tc.rel); got != tc.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", tc.glob, tc.rel, got, tc.want)
		}
	}
}

func TestNormalizedTrimsLists(t *testing.T) {
	def := Definition{
		ID:     " r1 ",
		After:  []string{" a ", "", "b"},
		Tags:   []string{"  ", "ejb "},
		Before: nil,
	}
	got := def.Normalized()
	if got.ID != "r1" {
		t.Fatalf("id = %q", got.ID)
	}
	if len(got.After) != 2 || got.After[0] != "a" || got.After[1] != "b" {
		t.Fatalf("after = %v", got.After)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "ejb" {
		t.Fatalf("tags = %v", got.Tags)
	}
}
