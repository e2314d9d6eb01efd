package nodes

// Operator symbols used by the expression algebra.
const (
	OpEq    = "="
	OpNotEq = "<>"
	OpLt    = "<"
	OpLtEq  = "<="
	OpGt    = ">"
	OpGtEq  = ">="
	OpAnd   = "AND"
	OpOr    = "OR"
)

// BinaryNode represents Left Op Right. Both operands are owned by the node.
type BinaryNode struct {
	Op    string
	Left  Node
	Right Node
}

func (n *BinaryNode) Accept(v Visitor) string { return v.VisitBinary(n) }

// NewBinary creates a BinaryNode.
func NewBinary(op string, left, right Node) *BinaryNode {
	return &BinaryNode{Op: op, Left: left, Right: right}
}

// And conjoins two predicates. A nil left side returns right unchanged, which
// lets callers fold a list of conditions starting from nothing.
func And(left, right Node) Node {
	if left == nil {
		return right
	}
	return NewBinary(OpAnd, left, right)
}
