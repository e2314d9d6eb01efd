package expr

import (
	"fmt"
	"strings"

	"github.com/bawdo/typesql/nodes"
)

// Comparisons accept operands of any nullability but the same value type and
// aggregation state. The result is NotNull: a comparison against a nullable
// column is still usable as a filter.

// Eq renders (l = r).
func Eq[T any, NL, NR Nullability, A AggState](l Expr[T, NL, A], r Expr[T, NR, A]) Expr[bool, NotNull, A] {
	return compare[A](nodes.OpEq, l.node, r.node)
}

// Ne renders (l <> r).
func Ne[T any, NL, NR Nullability, A AggState](l Expr[T, NL, A], r Expr[T, NR, A]) Expr[bool, NotNull, A] {
	return compare[A](nodes.OpNotEq, l.node, r.node)
}

// Lt renders (l < r).
func Lt[T any, NL, NR Nullability, A AggState](l Expr[T, NL, A], r Expr[T, NR, A]) Expr[bool, NotNull, A] {
	return compare[A](nodes.OpLt, l.node, r.node)
}

// Le renders (l <= r).
func Le[T any, NL, NR Nullability, A AggState](l Expr[T, NL, A], r Expr[T, NR, A]) Expr[bool, NotNull, A] {
	return compare[A](nodes.OpLtEq, l.node, r.node)
}

// Gt renders (l > r).
func Gt[T any, NL, NR Nullability, A AggState](l Expr[T, NL, A], r Expr[T, NR, A]) Expr[bool, NotNull, A] {
	return compare[A](nodes.OpGt, l.node, r.node)
}

// Ge renders (l >= r).
func Ge[T any, NL, NR Nullability, A AggState](l Expr[T, NL, A], r Expr[T, NR, A]) Expr[bool, NotNull, A] {
	return compare[A](nodes.OpGtEq, l.node, r.node)
}

func compare[A AggState](op string, l, r nodes.Node) Expr[bool, NotNull, A] {
	return FromNode[bool, NotNull, A](nodes.NewBinary(op, l, r))
}

// And renders (l AND r). Both sides must share nullability; combine a
// NotNull predicate with a Nullable one by passing it through Widen first,
// which yields a Nullable result.
func And[N Nullability, A AggState](l, r Expr[bool, N, A]) Expr[bool, N, A] {
	return FromNode[bool, N, A](nodes.NewBinary(nodes.OpAnd, l.node, r.node))
}

// Or renders (l OR r) with the same typing as And.
func Or[N Nullability, A AggState](l, r Expr[bool, N, A]) Expr[bool, N, A] {
	return FromNode[bool, N, A](nodes.NewBinary(nodes.OpOr, l.node, r.node))
}

// All folds And over first and rest from the left.
func All[N Nullability, A AggState](first Expr[bool, N, A], rest ...Expr[bool, N, A]) Expr[bool, N, A] {
	acc := first
	for _, e := range rest {
		acc = And(acc, e)
	}
	return acc
}

// Any folds Or over first and rest from the left.
func Any[N Nullability, A AggState](first Expr[bool, N, A], rest ...Expr[bool, N, A]) Expr[bool, N, A] {
	acc := first
	for _, e := range rest {
		acc = Or(acc, e)
	}
	return acc
}

// Not renders (NOT e). Nullability is preserved.
func Not[N Nullability, A AggState](e Expr[bool, N, A]) Expr[bool, N, A] {
	return FromNode[bool, N, A](nodes.NewUnary(nodes.OpNot, e.node))
}

// Widen relabels a NotNull expression as Nullable. The node is unchanged.
func Widen[T any, A AggState](e Expr[T, NotNull, A]) Expr[T, Nullable, A] {
	return FromNode[T, Nullable, A](e.node)
}

// IsNull renders (e IS NULL). It only accepts nullable expressions.
func IsNull[T any, A AggState](e Expr[T, Nullable, A]) Expr[bool, NotNull, A] {
	return FromNode[bool, NotNull, A](nodes.NewUnary(nodes.OpIsNull, e.node))
}

// IsNotNull renders (e IS NOT NULL). It only accepts nullable expressions.
func IsNotNull[T any, A AggState](e Expr[T, Nullable, A]) Expr[bool, NotNull, A] {
	return FromNode[bool, NotNull, A](nodes.NewUnary(nodes.OpIsNotNull, e.node))
}

const operatorSymbols = "=<>!~&|+-*/%^@#"

// validateOperator panics unless op is a plausible operator token. It keeps
// Bin from becoming a way to smuggle arbitrary SQL into the tree.
func validateOperator(op string) {
	if strings.TrimSpace(op) == "" {
		panic("typesql: invalid operator: empty")
	}
	for _, c := range op {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == ' ':
		case strings.ContainsRune(operatorSymbols, c):
		default:
			panic(fmt.Sprintf("typesql: invalid operator character %q in %q", string(c), op))
		}
	}
}
