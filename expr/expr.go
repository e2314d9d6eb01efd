// Package expr is the typed expression algebra.
//
// An Expr carries three phantom type parameters: the SQL value type T, a
// nullability tag N and an aggregation tag A. The tags exist only at compile
// time, so comparing an int column with a string column, filtering on a
// predicate that may be NULL, or mixing aggregated with plain expressions
// fails to build instead of failing at the database.
package expr

import "github.com/bawdo/typesql/nodes"

// Nullability is the sealed set of nullability tags: NotNull and Nullable.
type Nullability interface {
	nullable() bool
}

// NotNull marks an expression that never evaluates to SQL NULL.
type NotNull struct{}

// Nullable marks an expression that may evaluate to SQL NULL.
type Nullable struct{}

func (NotNull) nullable() bool  { return false }
func (Nullable) nullable() bool { return true }

// IsNullable reports whether N is the Nullable tag.
func IsNullable[N Nullability]() bool {
	var n N
	return n.nullable()
}

// AggState is the sealed set of aggregation tags: NonAgg and Agg.
type AggState interface {
	aggregated() bool
}

// NonAgg marks a plain per-row expression.
type NonAgg struct{}

// Agg marks an aggregated expression. No constructor produces one yet; the
// tag keeps operators from mixing the two once aggregates exist.
type Agg struct{}

func (NonAgg) aggregated() bool { return false }
func (Agg) aggregated() bool    { return true }

// IsAggregate reports whether A is the Agg tag.
func IsAggregate[A AggState]() bool {
	var a A
	return a.aggregated()
}

// Expr is a typed handle over an AST node.
type Expr[T any, N Nullability, A AggState] struct {
	node nodes.Node
}

// FromNode wraps an existing node with the given type tags. The caller is
// responsible for the tags being truthful; column handles and generated
// proxies are the intended users.
func FromNode[T any, N Nullability, A AggState](n nodes.Node) Expr[T, N, A] {
	return Expr[T, N, A]{node: n}
}

// Node returns the underlying AST node.
func (e Expr[T, N, A]) Node() nodes.Node { return e.node }

// Accept renders the expression with v, so an Expr can be passed anywhere a
// nodes.Node is expected.
func (e Expr[T, N, A]) Accept(v nodes.Visitor) string { return e.node.Accept(v) }

// Eq compares e with an operand of identical tags. Use the package-level Eq
// when the operands differ in nullability.
func (e Expr[T, N, A]) Eq(other Expr[T, N, A]) Expr[bool, NotNull, A] {
	return Eq(e, other)
}

// Ne is the method form of the package-level Ne.
func (e Expr[T, N, A]) Ne(other Expr[T, N, A]) Expr[bool, NotNull, A] {
	return Ne(e, other)
}

// Bin combines e and other with an arbitrary operator token. It is the
// escape hatch for operators the algebra does not name; the token is checked
// for characters only, not meaning.
func (e Expr[T, N, A]) Bin(op string, other Expr[T, N, A]) Expr[bool, NotNull, A] {
	validateOperator(op)
	return FromNode[bool, NotNull, A](nodes.NewBinary(op, e.node, other.node))
}
