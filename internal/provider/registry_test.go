package provider

import (
	"testing"
)

func TestRegistryRegisterAndResolve(t *testing.T) {
	registry := NewRegistry(testCatalog(t))
	stub := &declaredStub{id: "scan-archives", decl: Declaration{Phase: "phase1"}}

	if err := registry.Register(stub); err != nil {
		t.Fatalf("register: %v", err)
	}

	resolved, err := registry.Resolve("scan-archives")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved != stub {
		t.Fatalf("resolved a different provider")
	}

	meta, ok := registry.Metadata("scan-archives")
	if !ok {
		t.Fatalf("expected metadata for scan-archives")
	}
	if meta.Phase() != "phase1" {
		t.Fatalf("unexpected phase %q", meta.Phase())
	}

	if _, err := registry.Resolve("missing"); err == nil {
		t.Fatalf("expected error for unknown id")
	}
}

func TestRegistryRejectsDuplicateIDs(t *testing.T) {
	registry := NewRegistry(testCatalog(t))
	if err := registry.Register(&plainStub{id: "unit"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(&declaredStub{id: "unit"}); err == nil {
		t.Fatalf("expected duplicate id rejection")
	}
	if registry.Len() != 1 {
		t.Fatalf("expected one registration, got %d", registry.Len())
	}
}

func TestRegistryRejectsInvalidMetadata(t *testing.T) {
	registry := NewRegistry(testCatalog(t))
	err := registry.Register(&declaredStub{
		id:   "unit",
		decl: Declaration{AfterIDs: []string{"unit"}},
	})
	if err == nil {
		t.Fatalf("expected self-reference rejection before entering the working set")
	}
	if registry.Len() != 0 {
		t.Fatalf("invalid provider entered the registry")
	}
}

func TestRegistryWorkingSetSorted(t *testing.T) {
	registry := NewRegistry(testCatalog(t))
	for _, id := range []string{"delta", "alpha", "charlie", "bravo"} {
		if err := registry.Register(&declaredStub{id: id}); err != nil {
			t.Fatalf("register %s: %v", id, err)
		}
	}
	want := []string{"alpha", "bravo", "charlie", "delta"}
	set := registry.WorkingSet()
	if len(set) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(set))
	}
	for i, meta := range set {
		if meta.ID() != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], meta.ID())
		}
	}
	ids := registry.IDs()
	for i, id := range want {
		if ids[i] != id {
			t.Fatalf("ids position %d: expected %s, got %s", i, id, ids[i])
		}
	}
}

func TestMustRegisterPanicsOnDuplicate(t *testing.T) {
	registry := NewRegistry(testCatalog(t))
	registry.MustRegister(&plainStub{id: "unit"})
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate registration")
		}
	}()
	registry.MustRegister(&plainStub{id: "unit"})
}
