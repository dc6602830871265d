package provider

import "reflect"

// Ref is the opaque identity of a provider implementation, derived from its
// Go type. Constraints declared with a Ref resolve structurally: every unit
// in the working set backed by that type matches. Units loaded from data
// files share their loader's type, which is why id-based constraints exist
// alongside Ref-based ones.
type Ref struct {
	name string
}

// RefOf derives the Ref for a provider implementation. A typed nil pointer
// is acceptable, so a constraint can name a sibling without instantiating
// it:
//
//	RefOf((*discovery.Provider)(nil))
func RefOf(v any) Ref {
	t := reflect.TypeOf(v)
	if t == nil {
		return Ref{}
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" {
		return Ref{name: t.String()}
	}
	if pkg := t.PkgPath(); pkg != "" {
		name = pkg + "." + name
	}
	return Ref{name: name}
}

// String returns the reference's stable name.
func (r Ref) String() string {
	return r.name
}

// IsZero reports whether the reference carries no identity.
func (r Ref) IsZero() bool {
	return r.name == ""
}
