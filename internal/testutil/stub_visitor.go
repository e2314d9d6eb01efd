// Package testutil provides shared test helpers for the typesql project.
package testutil

import (
	"strconv"

	"github.com/bawdo/typesql/nodes"
)

// StubVisitor implements nodes.Visitor with minimal return values for testing.
// Methods return meaningful short strings to aid in test assertions.
type StubVisitor struct{}

var _ nodes.Visitor = StubVisitor{}

func (sv StubVisitor) VisitTable(n *nodes.Table) string         { return n.Name }
func (sv StubVisitor) VisitAttribute(n *nodes.Attribute) string { return "attr" }
func (sv StubVisitor) VisitLiteral(n *nodes.LiteralNode) string { return "lit" }
func (sv StubVisitor) VisitBindParam(n *nodes.BindParamNode) string {
	return "bind_param"
}
func (sv StubVisitor) VisitBinary(n *nodes.BinaryNode) string {
	return n.Left.Accept(sv) + n.Op + n.Right.Accept(sv)
}
func (sv StubVisitor) VisitUnary(n *nodes.UnaryNode) string { return "unary" }
func (sv StubVisitor) VisitJoin(n *nodes.JoinNode) string   { return "join" }
func (sv StubVisitor) VisitSelectStatement(n *nodes.SelectStatement) string {
	return "select"
}

// StubParamVisitor implements nodes.Visitor and nodes.Parameterizer for testing.
type StubParamVisitor struct {
	StubVisitor
	params []int
}

var _ nodes.Visitor = (*StubParamVisitor)(nil)
var _ nodes.Parameterizer = (*StubParamVisitor)(nil)

func (sv *StubParamVisitor) VisitBindParam(n *nodes.BindParamNode) string {
	sv.params = append(sv.params, n.Index)
	return "$" + strconv.Itoa(n.Index+1)
}

func (sv *StubParamVisitor) Params() []int { return sv.params }
func (sv *StubParamVisitor) Reset()        { sv.params = nil }
