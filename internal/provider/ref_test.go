package provider

import "testing"

func TestRefOfStableAcrossInstances(t *testing.T) {
	a := RefOf(&plainStub{id: "one"})
	b := RefOf(&plainStub{id: "two"})
	if a != b {
		t.Fatalf("instances of one type produced different refs: %s vs %s", a, b)
	}
	if a.IsZero() {
		t.Fatalf("expected a non-zero ref")
	}
}

func TestRefOfDistinguishesTypes(t *testing.T) {
	if RefOf(&plainStub{}) == RefOf(&declaredStub{}) {
		t.Fatalf("distinct types share a ref")
	}
}

func TestRefOfTypedNil(t *testing.T) {
	viaNil := RefOf((*plainStub)(nil))
	viaValue := RefOf(&plainStub{})
	if viaNil != viaValue {
		t.Fatalf("typed nil ref %s differs from instance ref %s", viaNil, viaValue)
	}
}

func TestRefOfUntypedNil(t *testing.T) {
	if !RefOf(nil).IsZero() {
		t.Fatalf("expected zero ref for untyped nil")
	}
}
