package nodes

import "fmt"

// LiteralNode wraps a bool, int64 or string constant as an AST node.
type LiteralNode struct {
	Value any
}

func (n *LiteralNode) Accept(v Visitor) string { return v.VisitLiteral(n) }

// Literal wraps a raw Go value into a LiteralNode. Plain ints are widened to
// int64; any value outside bool, int64 and string panics.
func Literal(val any) *LiteralNode {
	switch v := val.(type) {
	case bool, int64, string:
		return &LiteralNode{Value: v}
	case int:
		return &LiteralNode{Value: int64(v)}
	default:
		panic(fmt.Sprintf("typesql: unsupported literal type %T", val))
	}
}
