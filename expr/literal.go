package expr

import "github.com/bawdo/typesql/nodes"

// Bool returns a boolean literal.
func Bool(v bool) Expr[bool, NotNull, NonAgg] {
	return FromNode[bool, NotNull, NonAgg](nodes.Literal(v))
}

// Int returns an integer literal.
func Int(v int64) Expr[int64, NotNull, NonAgg] {
	return FromNode[int64, NotNull, NonAgg](nodes.Literal(v))
}

// Str returns a string literal. Single quotes are escaped at render time.
func Str(v string) Expr[string, NotNull, NonAgg] {
	return FromNode[string, NotNull, NonAgg](nodes.Literal(v))
}

// Param returns a positional parameter of type T. idx is zero-based and is
// rendered one-based ($1 for idx 0). A negative idx panics.
func Param[T any](idx int) Expr[T, NotNull, NonAgg] {
	return FromNode[T, NotNull, NonAgg](nodes.NewBindParam(idx))
}

// NullableParam is Param for arguments that may be nil.
func NullableParam[T any](idx int) Expr[T, Nullable, NonAgg] {
	return FromNode[T, Nullable, NonAgg](nodes.NewBindParam(idx))
}
