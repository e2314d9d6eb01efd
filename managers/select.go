package managers

import (
	"github.com/bawdo/typesql/expr"
	"github.com/bawdo/typesql/nodes"
)

// The SelectN terminals freeze a builder into a Query. All projections of
// one select share an aggregation tag.

// Select1 projects one expression.
func Select1[P, NP, T1 any, N1 expr.Nullability, A expr.AggState](
	b FromBuilder[P, NP],
	fn func(P) expr.Expr[T1, N1, A],
) *Query[Row1[Cell[T1, N1]]] {
	e1 := fn(b.proxy)
	return newQuery(b.statement(e1.Node()), func(r *Row1[Cell[T1, N1]]) []any {
		return []any{&r.V1}
	})
}

// Select2 projects two expressions.
func Select2[P, NP, T1, T2 any, N1, N2 expr.Nullability, A expr.AggState](
	b FromBuilder[P, NP],
	fn func(P) (expr.Expr[T1, N1, A], expr.Expr[T2, N2, A]),
) *Query[Row2[Cell[T1, N1], Cell[T2, N2]]] {
	e1, e2 := fn(b.proxy)
	return newQuery(b.statement(e1.Node(), e2.Node()), func(r *Row2[Cell[T1, N1], Cell[T2, N2]]) []any {
		return []any{&r.V1, &r.V2}
	})
}

// Select3 projects three expressions.
func Select3[P, NP, T1, T2, T3 any, N1, N2, N3 expr.Nullability, A expr.AggState](
	b FromBuilder[P, NP],
	fn func(P) (expr.Expr[T1, N1, A], expr.Expr[T2, N2, A], expr.Expr[T3, N3, A]),
) *Query[Row3[Cell[T1, N1], Cell[T2, N2], Cell[T3, N3]]] {
	e1, e2, e3 := fn(b.proxy)
	return newQuery(b.statement(e1.Node(), e2.Node(), e3.Node()), func(r *Row3[Cell[T1, N1], Cell[T2, N2], Cell[T3, N3]]) []any {
		return []any{&r.V1, &r.V2, &r.V3}
	})
}

// Select4 projects four expressions.
func Select4[P, NP, T1, T2, T3, T4 any, N1, N2, N3, N4 expr.Nullability, A expr.AggState](
	b FromBuilder[P, NP],
	fn func(P) (expr.Expr[T1, N1, A], expr.Expr[T2, N2, A], expr.Expr[T3, N3, A], expr.Expr[T4, N4, A]),
) *Query[Row4[Cell[T1, N1], Cell[T2, N2], Cell[T3, N3], Cell[T4, N4]]] {
	e1, e2, e3, e4 := fn(b.proxy)
	stmt := b.statement(e1.Node(), e2.Node(), e3.Node(), e4.Node())
	return newQuery(stmt, func(r *Row4[Cell[T1, N1], Cell[T2, N2], Cell[T3, N3], Cell[T4, N4]]) []any {
		return []any{&r.V1, &r.V2, &r.V3, &r.V4}
	})
}

func newQuery[R any](stmt *nodes.SelectStatement, dest func(*R) []any) *Query[R] {
	return &Query[R]{stmt: stmt, dest: dest}
}
