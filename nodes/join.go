package nodes

// JoinType represents the type of SQL JOIN.
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
	RightJoin
	FullJoin
)

// String returns the keyword rendered before JOIN.
func (t JoinType) String() string {
	switch t {
	case InnerJoin:
		return "INNER"
	case LeftJoin:
		return "LEFT"
	case RightJoin:
		return "RIGHT"
	case FullJoin:
		return "FULL"
	default:
		return ""
	}
}

// JoinNode represents a binary join between two sources. Chained joins nest
// the previous join as Left, so the tree is always left-deep.
type JoinNode struct {
	Type  JoinType
	Left  Node // *Table or *JoinNode
	Right Node // *Table
	On    Node // join condition
}

// NewJoin creates a JoinNode.
func NewJoin(kind JoinType, left, right, on Node) *JoinNode {
	return &JoinNode{Type: kind, Left: left, Right: right, On: on}
}

func (n *JoinNode) Accept(v Visitor) string { return v.VisitJoin(n) }
