package nodes

// UnaryOp represents a unary operator.
type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpIsNull
	OpIsNotNull
)

// String returns the SQL keyword(s) for this operator.
func (op UnaryOp) String() string {
	switch op {
	case OpNot:
		return "NOT"
	case OpIsNull:
		return "IS NULL"
	case OpIsNotNull:
		return "IS NOT NULL"
	default:
		return ""
	}
}

// Prefix reports whether the operator is written before its operand.
func (op UnaryOp) Prefix() bool { return op == OpNot }

// UnaryNode represents NOT Expr, Expr IS NULL or Expr IS NOT NULL.
type UnaryNode struct {
	Op   UnaryOp
	Expr Node
}

func (n *UnaryNode) Accept(v Visitor) string { return v.VisitUnary(n) }

// NewUnary creates a UnaryNode.
func NewUnary(op UnaryOp, expr Node) *UnaryNode {
	return &UnaryNode{Op: op, Expr: expr}
}
