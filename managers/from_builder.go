// Package managers provides the typed query builder.
//
// A query starts at From, optionally grows through joins and filters, and
// ends at one of the SelectN terminals, which freeze it into a Query. Every
// step returns a new value; earlier builders stay valid and unchanged.
package managers

import (
	"github.com/bawdo/typesql/expr"
	"github.com/bawdo/typesql/nodes"
	"github.com/bawdo/typesql/schema"
)

// FromBuilder accumulates a source and a filter. P is the proxy handed to
// Filter and Select callbacks. NP is the proxy this source contributes when
// it ends up on the outer side of a later join.
type FromBuilder[P, NP any] struct {
	source   nodes.Node
	filter   nodes.Node
	proxy    P
	nullable NP
}

// From starts a query over table t.
func From[P, NP any](t schema.Table[P, NP]) FromBuilder[P, NP] {
	return FromBuilder[P, NP]{
		source:   nodes.NewTable(t.TableName()),
		proxy:    t.Proxy(),
		nullable: t.NullableProxy(),
	}
}

// Filter adds a condition. Repeated calls are combined with AND, in call
// order.
func (b FromBuilder[P, NP]) Filter(fn func(P) expr.Predicate) FromBuilder[P, NP] {
	b.filter = nodes.And(b.filter, fn(b.proxy).Node())
	return b
}

// Source returns the FROM tree built so far.
func (b FromBuilder[P, NP]) Source() nodes.Node { return b.source }

// Where returns the accumulated filter, or nil.
func (b FromBuilder[P, NP]) Where() nodes.Node { return b.filter }

// Proxy returns the proxy callbacks receive.
func (b FromBuilder[P, NP]) Proxy() P { return b.proxy }

// NullableProxy returns the all-nullable proxy of the source.
func (b FromBuilder[P, NP]) NullableProxy() NP { return b.nullable }

func (b FromBuilder[P, NP]) statement(projections ...nodes.Node) *nodes.SelectStatement {
	return &nodes.SelectStatement{
		From:        b.source,
		Where:       b.filter,
		Projections: projections,
	}
}
