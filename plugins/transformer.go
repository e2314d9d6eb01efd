// Package plugins defines the Transformer interface for AST middleware.
package plugins

import "github.com/bawdo/typesql/nodes"

// Transformer rewrites a finished SELECT statement. Implementations receive
// a private copy and may modify it in place or return a new one; an error
// rejects the query.
type Transformer interface {
	TransformSelect(stmt *nodes.SelectStatement) (*nodes.SelectStatement, error)
}

// TransformerFunc adapts a plain function to Transformer.
type TransformerFunc func(stmt *nodes.SelectStatement) (*nodes.SelectStatement, error)

func (f TransformerFunc) TransformSelect(stmt *nodes.SelectStatement) (*nodes.SelectStatement, error) {
	return f(stmt)
}

// AndWhere conjoins conds onto the statement's WHERE clause, left to right.
func AndWhere(stmt *nodes.SelectStatement, conds ...nodes.Node) {
	for _, c := range conds {
		stmt.Where = nodes.And(stmt.Where, c)
	}
}
