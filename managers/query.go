package managers

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bawdo/typesql/nodes"
	"github.com/bawdo/typesql/plugins"
	"github.com/bawdo/typesql/txn"
	"github.com/bawdo/typesql/visitors"
)

// Query is a finished SELECT whose rows decode into R. It is immutable and
// safe to share; every render uses a fresh visitor.
type Query[R any] struct {
	stmt *nodes.SelectStatement
	dest func(*R) []any
}

// SQL renders the query in the canonical dialect.
func (q *Query[R]) SQL() string {
	return q.stmt.Accept(visitors.NewPostgresVisitor())
}

// ToSQL renders the query with v and returns the zero-based parameter
// indexes in placeholder order. v must not be shared with another goroutine.
func (q *Query[R]) ToSQL(v nodes.Visitor) (string, []int) {
	return toSQLParams(v, q.stmt)
}

// Statement returns a copy of the query's AST.
func (q *Query[R]) Statement() *nodes.SelectStatement {
	return q.stmt.Clone()
}

// Transform returns a new query produced by running ts over a copy of the
// statement, in order. q is unchanged.
func (q *Query[R]) Transform(ts ...plugins.Transformer) (*Query[R], error) {
	stmt, err := applyTransformers(q.stmt, ts)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	return &Query[R]{stmt: stmt, dest: q.dest}, nil
}

// FetchAll runs the query inside tx and decodes every row. args bind the
// query's parameters by index: args[0] binds Param(0).
func (q *Query[R]) FetchAll(ctx context.Context, tx *txn.Tx, args ...any) ([]R, error) {
	rows, err := q.query(ctx, tx, args)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []R
	for rows.Next() {
		var r R
		if err := rows.Scan(q.dest(&r)...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// FetchOne runs the query inside tx and decodes the first row. It returns
// sql.ErrNoRows when the result is empty.
func (q *Query[R]) FetchOne(ctx context.Context, tx *txn.Tx, args ...any) (R, error) {
	var r R
	rows, err := q.query(ctx, tx, args)
	if err != nil {
		return r, err
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return r, fmt.Errorf("rows: %w", err)
		}
		return r, sql.ErrNoRows
	}
	if err := rows.Scan(q.dest(&r)...); err != nil {
		return r, fmt.Errorf("scan: %w", err)
	}
	return r, nil
}

func (q *Query[R]) query(ctx context.Context, tx *txn.Tx, args []any) (*sql.Rows, error) {
	v := tx.Visitor()
	text, _ := toSQLParams(v, q.stmt)
	bound, err := visitors.BindArgs(v, args)
	if err != nil {
		return nil, err
	}
	return tx.QueryContext(ctx, text, bound...)
}
