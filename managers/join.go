package managers

import (
	"github.com/bawdo/typesql/expr"
	"github.com/bawdo/typesql/nodes"
	"github.com/bawdo/typesql/schema"
)

// Join kinds differ in which side may be absent from a result row. A side
// that may be absent is exposed through its nullable proxy. The on callback
// always sees both normal proxies and runs once, when the join is added.

// LeftJoin keeps every row of b; columns of right become Nullable.
func LeftJoin[P, NP, RP, RNP any](b FromBuilder[P, NP], right schema.Table[RP, RNP], on func(P, RP) expr.Predicate) FromBuilder[schema.JoinProxy[P, RNP], schema.JoinProxy[NP, RNP]] {
	return FromBuilder[schema.JoinProxy[P, RNP], schema.JoinProxy[NP, RNP]]{
		source:   join(nodes.LeftJoin, b, right, on),
		filter:   b.filter,
		proxy:    schema.JoinProxy[P, RNP]{L: b.proxy, R: right.NullableProxy()},
		nullable: schema.JoinProxy[NP, RNP]{L: b.nullable, R: right.NullableProxy()},
	}
}

// InnerJoin keeps matching rows only; both sides keep their nullability.
func InnerJoin[P, NP, RP, RNP any](b FromBuilder[P, NP], right schema.Table[RP, RNP], on func(P, RP) expr.Predicate) FromBuilder[schema.JoinProxy[P, RP], schema.JoinProxy[NP, RNP]] {
	return FromBuilder[schema.JoinProxy[P, RP], schema.JoinProxy[NP, RNP]]{
		source:   join(nodes.InnerJoin, b, right, on),
		filter:   b.filter,
		proxy:    schema.JoinProxy[P, RP]{L: b.proxy, R: right.Proxy()},
		nullable: schema.JoinProxy[NP, RNP]{L: b.nullable, R: right.NullableProxy()},
	}
}

// RightJoin keeps every row of right; columns of b become Nullable.
func RightJoin[P, NP, RP, RNP any](b FromBuilder[P, NP], right schema.Table[RP, RNP], on func(P, RP) expr.Predicate) FromBuilder[schema.JoinProxy[NP, RP], schema.JoinProxy[NP, RNP]] {
	return FromBuilder[schema.JoinProxy[NP, RP], schema.JoinProxy[NP, RNP]]{
		source:   join(nodes.RightJoin, b, right, on),
		filter:   b.filter,
		proxy:    schema.JoinProxy[NP, RP]{L: b.nullable, R: right.Proxy()},
		nullable: schema.JoinProxy[NP, RNP]{L: b.nullable, R: right.NullableProxy()},
	}
}

// FullJoin keeps unmatched rows of both sides; every column becomes Nullable.
func FullJoin[P, NP, RP, RNP any](b FromBuilder[P, NP], right schema.Table[RP, RNP], on func(P, RP) expr.Predicate) FromBuilder[schema.JoinProxy[NP, RNP], schema.JoinProxy[NP, RNP]] {
	return FromBuilder[schema.JoinProxy[NP, RNP], schema.JoinProxy[NP, RNP]]{
		source:   join(nodes.FullJoin, b, right, on),
		filter:   b.filter,
		proxy:    schema.JoinProxy[NP, RNP]{L: b.nullable, R: right.NullableProxy()},
		nullable: schema.JoinProxy[NP, RNP]{L: b.nullable, R: right.NullableProxy()},
	}
}

func join[P, NP, RP, RNP any](kind nodes.JoinType, b FromBuilder[P, NP], right schema.Table[RP, RNP], on func(P, RP) expr.Predicate) *nodes.JoinNode {
	cond := on(b.proxy, right.Proxy())
	return nodes.NewJoin(kind, b.source, nodes.NewTable(right.TableName()), cond.Node())
}
