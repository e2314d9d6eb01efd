// Package nodes defines the AST node types used to represent a typed query.
//
// The tree is untyped: value types, nullability and aggregation state live
// only in the expr package's type parameters. Nodes are plain data and are
// never mutated once a query has been built from them.
package nodes

// Node is the interface that all AST nodes implement.
type Node interface {
	Accept(visitor Visitor) string
}

// Visitor defines the interface for walking the AST and producing output.
// Concrete visitors (e.g., Postgres, MySQL) implement this interface.
type Visitor interface {
	VisitTable(node *Table) string
	VisitJoin(node *JoinNode) string
	VisitAttribute(node *Attribute) string
	VisitBindParam(node *BindParamNode) string
	VisitLiteral(node *LiteralNode) string
	VisitBinary(node *BinaryNode) string
	VisitUnary(node *UnaryNode) string
	VisitSelectStatement(node *SelectStatement) string
}

// Parameterizer is implemented by visitors that track placeholders.
// Callers use type assertion to read the placeholder order after SQL
// generation.
type Parameterizer interface {
	// Params returns the zero-based parameter indexes in the order their
	// placeholders were emitted.
	Params() []int
	Reset()
}
