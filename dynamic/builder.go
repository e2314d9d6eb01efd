package dynamic

import (
	"fmt"
	"slices"

	"github.com/bawdo/typesql/nodes"
)

type scopeEntry struct {
	def      TableDef
	nullable bool
}

// Scope resolves column references against the tables of a query. A table
// on the outer side of a join resolves every column as nullable.
type Scope struct {
	entries []scopeEntry
}

// Column returns the expression for table.column.
func (s *Scope) Column(table, column string) (Expr, error) {
	for _, e := range s.entries {
		if e.def.Name != table {
			continue
		}
		c, ok := e.def.Column(column)
		if !ok {
			return Expr{}, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, column)
		}
		return Expr{
			Node:     nodes.NewAttribute(table, column),
			Type:     c.Type,
			Nullable: c.Nullable || e.nullable,
		}, nil
	}
	return Expr{}, fmt.Errorf("%w: %s is not in the query", ErrUnknownTable, table)
}

// Tables lists the tables in scope, in FROM and JOIN order.
func (s *Scope) Tables() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.def.Name
	}
	return out
}

func (s *Scope) has(table string) bool {
	return slices.ContainsFunc(s.entries, func(e scopeEntry) bool { return e.def.Name == table })
}

func (s *Scope) clone() *Scope {
	return &Scope{entries: slices.Clone(s.entries)}
}

// Builder accumulates a query. Every method returns a new Builder and
// leaves the receiver unchanged, so a failed step loses nothing.
type Builder struct {
	catalog     *Catalog
	scope       *Scope
	source      nodes.Node
	where       nodes.Node
	projections []Expr
}

// New returns an empty builder over catalog.
func New(catalog *Catalog) *Builder {
	return &Builder{catalog: catalog, scope: &Scope{}}
}

// Scope returns the tables the builder can currently reference.
func (b *Builder) Scope() *Scope { return b.scope.clone() }

// Projections returns the selected expressions.
func (b *Builder) Projections() []Expr { return slices.Clone(b.projections) }

func (b *Builder) copy() *Builder {
	c := *b
	c.scope = b.scope.clone()
	c.projections = slices.Clone(b.projections)
	return &c
}

func (b *Builder) lookup(table string) (TableDef, error) {
	def, ok := b.catalog.Table(table)
	if !ok {
		return TableDef{}, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return def, nil
}

// From starts over with table as the only source. Filters and projections
// are dropped.
func (b *Builder) From(table string) (*Builder, error) {
	def, err := b.lookup(table)
	if err != nil {
		return nil, err
	}
	return &Builder{
		catalog: b.catalog,
		scope:   &Scope{entries: []scopeEntry{{def: def}}},
		source:  nodes.NewTable(table),
	}, nil
}

// Join adds table with the given join kind. on builds the condition in a
// scope where both sides keep their current nullability; the join's own
// nullability rules apply afterwards.
func (b *Builder) Join(kind nodes.JoinType, table string, on func(*Scope) (Expr, error)) (*Builder, error) {
	if b.source == nil {
		return nil, ErrNoSource
	}
	def, err := b.lookup(table)
	if err != nil {
		return nil, err
	}
	if b.scope.has(table) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateTable, table)
	}

	next := b.copy()
	next.scope.entries = append(next.scope.entries, scopeEntry{def: def})
	cond, err := on(next.scope.clone())
	if err != nil {
		return nil, err
	}
	if err := checkPredicate("ON", cond); err != nil {
		return nil, err
	}

	last := len(next.scope.entries) - 1
	switch kind {
	case nodes.LeftJoin:
		next.scope.entries[last].nullable = true
	case nodes.RightJoin:
		for i := range last {
			next.scope.entries[i].nullable = true
		}
	case nodes.FullJoin:
		for i := range next.scope.entries {
			next.scope.entries[i].nullable = true
		}
	}
	next.source = nodes.NewJoin(kind, b.source, nodes.NewTable(table), cond.Node)
	return next, nil
}

// Where adds a condition, AND-ed onto any earlier one.
func (b *Builder) Where(fn func(*Scope) (Expr, error)) (*Builder, error) {
	if b.source == nil {
		return nil, ErrNoSource
	}
	cond, err := fn(b.scope.clone())
	if err != nil {
		return nil, err
	}
	if err := checkPredicate("WHERE", cond); err != nil {
		return nil, err
	}
	next := b.copy()
	next.where = nodes.And(b.where, cond.Node)
	return next, nil
}

// Select replaces the projection list. All projections must share an
// aggregation state.
func (b *Builder) Select(fn func(*Scope) ([]Expr, error)) (*Builder, error) {
	if b.source == nil {
		return nil, ErrNoSource
	}
	exprs, err := fn(b.scope.clone())
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(exprs); i++ {
		if exprs[i].Agg != exprs[0].Agg {
			return nil, typeErr("SELECT", ErrAggMismatch, "projection %d", i+1)
		}
	}
	next := b.copy()
	next.projections = slices.Clone(exprs)
	return next, nil
}

// Statement returns the AST of the query built so far. An empty projection
// list renders as SELECT *.
func (b *Builder) Statement() (*nodes.SelectStatement, error) {
	if b.source == nil {
		return nil, ErrNoSource
	}
	stmt := &nodes.SelectStatement{From: b.source, Where: b.where}
	for _, p := range b.projections {
		stmt.Projections = append(stmt.Projections, p.Node)
	}
	return stmt, nil
}
