package phase

import (
	"errors"
	"testing"
)

func TestNewCatalogValidation(t *testing.T) {
	cases := []struct {
		name    string
		ordered []Phase
		def     Phase
	}{
		{name: "empty list", ordered: nil, def: MigrationRules},
		{name: "blank entry", ordered: []Phase{"one", "   "}, def: "one"},
		{name: "duplicate entry", ordered: []Phase{"one", "two", "one"}, def: "two"},
		{name: "default not listed", ordered: []Phase{"one", "two"}, def: "three"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewCatalog(tc.ordered, tc.def); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}

func TestCatalogIndexOf(t *testing.T) {
	catalog, err := NewCatalog([]Phase{"first", "second", "third"}, "second")
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}

	for i, p := range []Phase{"first", "second", "third"} {
		index, err := catalog.IndexOf(p)
		if err != nil {
			t.Fatalf("index of %s: %v", p, err)
		}
		if index != i {
			t.Fatalf("expected %s at %d, got %d", p, i, index)
		}
	}

	_, err = catalog.IndexOf("missing")
	var unknown *UnknownPhaseError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownPhaseError, got %v", err)
	}
	if unknown.Phase != "missing" {
		t.Fatalf("error names %q", unknown.Phase)
	}
}

func TestCatalogTrimsEntries(t *testing.T) {
	catalog, err := NewCatalog([]Phase{" first ", "second"}, " first ")
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	if !catalog.Contains("first") {
		t.Fatalf("expected trimmed entry to resolve")
	}
	if catalog.Default() != "first" {
		t.Fatalf("expected trimmed default, got %q", catalog.Default())
	}
}

func TestCatalogPhasesReturnsCopy(t *testing.T) {
	catalog, err := NewCatalog([]Phase{"first", "second"}, "first")
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	phases := catalog.Phases()
	phases[0] = "mutated"
	if got := catalog.Phases()[0]; got != "first" {
		t.Fatalf("catalog order mutated: %q", got)
	}
}

func TestStandardCatalog(t *testing.T) {
	catalog := Standard()
	if catalog.Default() != MigrationRules {
		t.Fatalf("expected %s default, got %s", MigrationRules, catalog.Default())
	}
	discovery, err := catalog.IndexOf(Discovery)
	if err != nil {
		t.Fatalf("index of discovery: %v", err)
	}
	if discovery != 0 {
		t.Fatalf("expected discovery first, got %d", discovery)
	}
	reporting, err := catalog.IndexOf(ReportGeneration)
	if err != nil {
		t.Fatalf("index of report-generation: %v", err)
	}
	rules, _ := catalog.IndexOf(MigrationRules)
	if reporting < rules {
		t.Fatalf("report-generation before migration-rules")
	}
}
