package provider

// Base provides common plumbing for built-in providers: identity plus the
// default declaration consumed by ForProvider.
type Base struct {
	id   string
	decl Declaration
}

// NewBase seeds the helper with the provider's id and declaration.
func NewBase(id string, decl Declaration) Base {
	return Base{id: id, decl: decl}
}

// ID implements Provider.ID.
func (b *Base) ID() string {
	return b.id
}

// Declaration implements Declarer.
func (b *Base) Declaration() Declaration {
	d := b.decl
	d.After = append([]Ref{}, b.decl.After...)
	d.AfterIDs = append([]string{}, b.decl.AfterIDs...)
	d.Before = append([]Ref{}, b.decl.Before...)
	d.BeforeIDs = append([]string{}, b.decl.BeforeIDs...)
	d.Tags = append([]string{}, b.decl.Tags...)
	return d
}
