// Package policy provides a Transformer that enforces row-level access
// rules by injecting policy-derived WHERE conditions.
//
// You supply a [Func] that is called once per table referenced in the query
// (FROM and JOINs). It inspects the table name and returns zero or more
// condition nodes to AND onto the WHERE clause. Returning an error rejects
// the query entirely, for hard "access denied" rules.
//
// # Basic usage
//
//	rules := func(table string) ([]nodes.Node, error) {
//	    if table == "secrets" {
//	        return nil, policy.ErrDenied
//	    }
//	    if table == "users" {
//	        tenant := nodes.NewAttribute("users", "tenant_id")
//	        return []nodes.Node{nodes.NewBinary(nodes.OpEq, tenant, nodes.Literal(42))}, nil
//	    }
//	    return nil, nil
//	}
//
//	q, err := q.Transform(policy.New(rules))
//	// SELECT users.id FROM users WHERE (users.tenant_id = 42)
//
// Policies compose with any other Transformer; Transform applies them in
// argument order.
package policy

import (
	"errors"
	"fmt"
	"slices"

	"github.com/bawdo/typesql/expr"
	"github.com/bawdo/typesql/nodes"
	"github.com/bawdo/typesql/plugins"
)

// ErrDenied is the conventional error for a table the caller may not read.
var ErrDenied = errors.New("typesql: access denied")

// Func evaluates a policy for the given table name and returns conditions
// to inject into the query's WHERE clause. A non-nil error rejects the query.
type Func func(tableName string) ([]nodes.Node, error)

// Policy is a Transformer that evaluates a Func against every table in the
// query and injects the resulting conditions.
type Policy struct {
	eval Func
}

var _ plugins.Transformer = (*Policy)(nil)

// New creates a Policy transformer.
func New(fn Func) *Policy {
	return &Policy{eval: fn}
}

// TransformSelect evaluates the policy for each table referenced in the
// query (FROM and JOINs) and ANDs any returned conditions onto WHERE.
func (p *Policy) TransformSelect(stmt *nodes.SelectStatement) (*nodes.SelectStatement, error) {
	for _, name := range plugins.CollectTables(stmt) {
		conditions, err := p.eval(name)
		if err != nil {
			return nil, fmt.Errorf("policy for table %q: %w", name, err)
		}
		plugins.AndWhere(stmt, conditions...)
	}
	return stmt, nil
}

// Deny returns a Func rejecting every query that touches one of tables.
func Deny(tables ...string) Func {
	return func(table string) ([]nodes.Node, error) {
		if slices.Contains(tables, table) {
			return nil, ErrDenied
		}
		return nil, nil
	}
}

// Where returns a Func adding the same typed predicate whenever table is
// referenced. Other tables are left alone.
func Where(table string, cond expr.Predicate) Func {
	return func(name string) ([]nodes.Node, error) {
		if name != table {
			return nil, nil
		}
		return []nodes.Node{cond.Node()}, nil
	}
}

// Chain evaluates fns in order for every table, concatenating their
// conditions and stopping at the first error.
func Chain(fns ...Func) Func {
	return func(table string) ([]nodes.Node, error) {
		var out []nodes.Node
		for _, fn := range fns {
			conds, err := fn(table)
			if err != nil {
				return nil, err
			}
			out = append(out, conds...)
		}
		return out, nil
	}
}
