// Package typesql builds SQL SELECT queries whose column types,
// nullability and aggregation state are checked by the Go compiler.
//
// This package re-exports the everyday entry points. The subpackages hold
// the full API:
//   - github.com/bawdo/typesql/expr (typed expressions)
//   - github.com/bawdo/typesql/managers (FROM, joins and SELECT)
//   - github.com/bawdo/typesql/visitors (SQL generation)
//   - github.com/bawdo/typesql/txn (connections and transactions)
//   - github.com/bawdo/typesql/plugins (query transformers)
package typesql

import (
	"context"

	"github.com/bawdo/typesql/expr"
	"github.com/bawdo/typesql/managers"
	"github.com/bawdo/typesql/nodes"
	"github.com/bawdo/typesql/schema"
	"github.com/bawdo/typesql/txn"
	"github.com/bawdo/typesql/visitors"
)

// --- Expression types ---

// Expr is a typed SQL expression.
type Expr[T any, N expr.Nullability, A expr.AggState] = expr.Expr[T, N, A]

// Predicate is a filter or join condition.
type Predicate = expr.Predicate

// Value is a non-null projection of type T.
type Value[T any] = expr.Value[T]

// NullableValue is a projection of type T that may be NULL.
type NullableValue[T any] = expr.NullableValue[T]

type (
	NotNull  = expr.NotNull
	Nullable = expr.Nullable
	NonAgg   = expr.NonAgg
	Agg      = expr.Agg
)

// --- Builders ---

// Table is a generated table descriptor.
type Table[P, NP any] = schema.Table[P, NP]

// FromBuilder accumulates sources and filters before a projection.
type FromBuilder[P, NP any] = managers.FromBuilder[P, NP]

// Query is a finished SELECT whose rows decode into R.
type Query[R any] = managers.Query[R]

// From starts a query over t.
func From[P, NP any](t schema.Table[P, NP]) FromBuilder[P, NP] {
	return managers.From(t)
}

// --- Rendering ---

// Node is the base interface all AST nodes implement.
type Node = nodes.Node

// NewPostgresVisitor renders with $N placeholders.
func NewPostgresVisitor(opts ...visitors.Option) *visitors.PostgresVisitor {
	return visitors.NewPostgresVisitor(opts...)
}

// NewMySQLVisitor renders with ? placeholders.
func NewMySQLVisitor(opts ...visitors.Option) *visitors.MySQLVisitor {
	return visitors.NewMySQLVisitor(opts...)
}

// NewSQLiteVisitor renders with ?N placeholders.
func NewSQLiteVisitor(opts ...visitors.Option) *visitors.SQLiteVisitor {
	return visitors.NewSQLiteVisitor(opts...)
}

// WithQuotedIdentifiers quotes table and column names in the dialect's style.
func WithQuotedIdentifiers() visitors.Option {
	return visitors.WithQuotedIdentifiers()
}

// --- Execution ---

// Engine names a supported database.
type Engine = txn.Engine

const (
	Postgres = txn.Postgres
	MySQL    = txn.MySQL
	SQLite   = txn.SQLite
)

// Conn is an open database handle. Tx is the only way to run a Query.
type (
	Conn = txn.Conn
	Tx   = txn.Tx
)

// Open connects to dsn using engine's driver.
func Open(ctx context.Context, engine Engine, dsn string, opts ...txn.Option) (*Conn, error) {
	return txn.Open(ctx, engine, dsn, opts...)
}
