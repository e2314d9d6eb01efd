package nodes

// Attribute represents a column reference bound to a table.
type Attribute struct {
	Table string
	Name  string
}

// NewAttribute creates a column reference for table.name.
func NewAttribute(table, name string) *Attribute {
	return &Attribute{Table: table, Name: name}
}

func (a *Attribute) Accept(v Visitor) string { return v.VisitAttribute(a) }
