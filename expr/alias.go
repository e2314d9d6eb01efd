package expr

// Shorthands for the plain per-row expressions that builder callbacks
// return. Callback literals must spell out their result types, so these
// keep signatures readable.
type (
	// Predicate is a filter or join condition.
	Predicate = Expr[bool, NotNull, NonAgg]

	// Value is a non-null projection of type T.
	Value[T any] = Expr[T, NotNull, NonAgg]

	// NullableValue is a projection of type T that may be NULL.
	NullableValue[T any] = Expr[T, Nullable, NonAgg]
)
