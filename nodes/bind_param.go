package nodes

// BindParamNode represents a positional placeholder. Index is zero-based;
// visitors render it 1-based ($1, ?1) or as a bare ? depending on dialect.
type BindParamNode struct {
	Index int
}

func (n *BindParamNode) Accept(v Visitor) string { return v.VisitBindParam(n) }

// NewBindParam creates a BindParamNode. A negative index panics.
func NewBindParam(index int) *BindParamNode {
	if index < 0 {
		panic("typesql: negative parameter index")
	}
	return &BindParamNode{Index: index}
}
