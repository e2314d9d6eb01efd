package nodes

// Table represents a SQL table reference.
type Table struct {
	Name string
}

func NewTable(name string) *Table {
	return &Table{Name: name}
}

func (t *Table) Accept(v Visitor) string { return v.VisitTable(t) }

// Col creates an Attribute (column reference) bound to this table.
func (t *Table) Col(name string) *Attribute {
	return NewAttribute(t.Name, name)
}

// TableNames returns the names of every table in a source tree, left to
// right. Anything other than a *Table or *JoinNode contributes nothing.
func TableNames(source Node) []string {
	switch s := source.(type) {
	case *Table:
		return []string{s.Name}
	case *JoinNode:
		return append(TableNames(s.Left), TableNames(s.Right)...)
	default:
		return nil
	}
}
