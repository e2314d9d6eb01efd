package managers

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/bawdo/typesql/expr"
)

// ErrUnexpectedNull is returned when the database yields NULL for a column
// typed NotNull.
var ErrUnexpectedNull = errors.New("typesql: NULL in a non-nullable column")

// Cell is one projected value. It is always present when N is NotNull and
// may be absent when N is Nullable.
type Cell[T any, N expr.Nullability] struct {
	v sql.Null[T]
}

// CellOf returns a present cell.
func CellOf[T any, N expr.Nullability](v T) Cell[T, N] {
	return Cell[T, N]{v: sql.Null[T]{V: v, Valid: true}}
}

// NullCell returns an absent cell.
func NullCell[T any]() Cell[T, expr.Nullable] {
	return Cell[T, expr.Nullable]{}
}

// Get returns the value and whether it is present.
func (c Cell[T, N]) Get() (T, bool) { return c.v.V, c.v.Valid }

// Value returns the value, or the zero value of T when absent.
func (c Cell[T, N]) Value() T { return c.v.V }

// Valid reports whether the value is present.
func (c Cell[T, N]) Valid() bool { return c.v.Valid }

func (c Cell[T, N]) String() string {
	if !c.v.Valid {
		return "NULL"
	}
	return fmt.Sprint(c.v.V)
}

// Scan implements sql.Scanner.
func (c *Cell[T, N]) Scan(src any) error {
	if src == nil && !expr.IsNullable[N]() {
		return ErrUnexpectedNull
	}
	return c.v.Scan(src)
}

// Row1 is a result row of one projection.
type Row1[V1 any] struct {
	V1 V1
}

// Row2 is a result row of two projections.
type Row2[V1, V2 any] struct {
	V1 V1
	V2 V2
}

// Row3 is a result row of three projections.
type Row3[V1, V2, V3 any] struct {
	V1 V1
	V2 V2
	V3 V3
}

// Row4 is a result row of four projections.
type Row4[V1, V2, V3, V4 any] struct {
	V1 V1
	V2 V2
	V3 V3
	V4 V4
}
