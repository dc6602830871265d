package rules

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jonathanvila/windup/internal/phase"
	"github.com/jonathanvila/windup/internal/provider"
	"github.com/jonathanvila/windup/internal/schedule"
)

func TestBuiltinsSchedule(t *testing.T) {
	reg := provider.NewRegistry(phase.Standard())
	RegisterBuiltins(reg)
	result, err := schedule.Schedule(reg.WorkingSet(), phase.Standard())
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	want := []string{
		"discover-files",
		"scan-archives",
		"java-imports",
		"xml-resources",
		"analysis-report",
	}
	if diff := cmp.Diff(want, result.IDs()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	// Cross-phase constraints among the builtins are all consistent with
	// phase order, so none may surface as a warning.
	if warnings := result.Warnings(); len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
}

func TestBuiltinsRegisterOnce(t *testing.T) {
	reg := provider.NewRegistry(phase.Standard())
	RegisterBuiltins(reg)
	if reg.Len() != 5 {
		t.Fatalf("registered %d providers, want 5", reg.Len())
	}
}
