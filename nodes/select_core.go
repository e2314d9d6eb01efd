package nodes

// SelectStatement is the data container for a SELECT query. The fluent,
// typed API for building one lives in the managers package.
type SelectStatement struct {
	From        Node   // nil, *Table or *JoinNode
	Where       Node   // nil or a boolean expression
	Projections []Node // empty renders as *
}

func (n *SelectStatement) Accept(v Visitor) string { return v.VisitSelectStatement(n) }

// Clone returns a copy whose projection slice is not shared with n. Nodes
// themselves are immutable and are shared.
func (n *SelectStatement) Clone() *SelectStatement {
	projections := make([]Node, len(n.Projections))
	copy(projections, n.Projections)
	return &SelectStatement{
		From:        n.From,
		Where:       n.Where,
		Projections: projections,
	}
}
