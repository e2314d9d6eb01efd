// Package txn executes rendered queries inside a transaction.
//
// The only way to obtain a *Tx is the callback passed to Conn.WithTx, so
// holding one proves a transaction is open. Once WithTx returns the Tx is
// finished and every further call fails with ErrTxDone.
package txn

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/bawdo/typesql/nodes"
	"github.com/bawdo/typesql/visitors"
)

var (
	// ErrTxDone is returned when a Tx is used after its WithTx call returned.
	ErrTxDone = errors.New("typesql: transaction already finished")

	// ErrUnknownEngine is returned for an engine name outside Engines.
	ErrUnknownEngine = errors.New("typesql: unknown engine")
)

// Option configures a Conn.
type Option func(*Conn)

// WithLogger sets the logger used for transaction and query records.
// The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *Conn) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithVisitorOptions sets options applied to every visitor a Tx hands out.
func WithVisitorOptions(opts ...visitors.Option) Option {
	return func(c *Conn) {
		c.visitorOpts = append(c.visitorOpts, opts...)
	}
}

// Conn is a database handle bound to one engine.
type Conn struct {
	db          *sql.DB
	engine      Engine
	logger      *slog.Logger
	visitorOpts []visitors.Option
}

// Open connects to dsn with the engine's driver and pings it.
func Open(ctx context.Context, engine Engine, dsn string, opts ...Option) (*Conn, error) {
	db, err := openDB(engine, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	c := OpenDB(db, engine, opts...)
	c.logger.Debug("connected", "engine", string(engine), "dsn", SanitizeDSN(dsn))
	return c, nil
}

// OpenDB wraps an existing *sql.DB. The caller keeps ownership of db's
// configuration; Close still closes it.
func OpenDB(db *sql.DB, engine Engine, opts ...Option) *Conn {
	c := &Conn{
		db:     db,
		engine: engine,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func openDB(engine Engine, dsn string) (*sql.DB, error) {
	switch engine {
	case Postgres:
		cfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse postgres dsn: %w", err)
		}
		return stdlib.OpenDB(*cfg), nil
	case MySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			return nil, fmt.Errorf("mysql connector: %w", err)
		}
		return sql.OpenDB(connector), nil
	case SQLite:
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, string(engine))
	}
}

// Engine returns the engine the connection was opened with.
func (c *Conn) Engine() Engine { return c.engine }

// DB returns the underlying handle, for schema setup and introspection.
func (c *Conn) DB() *sql.DB { return c.db }

// Close closes the underlying handle.
func (c *Conn) Close() error {
	return c.db.Close()
}

// WithTx runs fn inside a transaction. A nil return commits; an error or a
// panic rolls back. Panics are re-raised after the rollback.
func (c *Conn) WithTx(ctx context.Context, fn func(*Tx) error) (err error) {
	sqlTx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	c.logger.Debug("begin", "engine", string(c.engine))
	tx := &Tx{tx: sqlTx, conn: c}

	defer func() {
		tx.done = true
		if r := recover(); r != nil {
			c.rollback(sqlTx)
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		c.rollback(sqlTx)
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	c.logger.Debug("commit")
	return nil
}

func (c *Conn) rollback(sqlTx *sql.Tx) {
	if err := sqlTx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		c.logger.Warn("rollback failed", "error", err)
		return
	}
	c.logger.Debug("rollback")
}

// Tx is an open transaction. It belongs to the goroutine running the WithTx
// callback.
type Tx struct {
	tx   *sql.Tx
	conn *Conn
	done bool
}

// Engine returns the engine of the owning connection.
func (t *Tx) Engine() Engine { return t.conn.engine }

// Visitor returns a fresh renderer for the transaction's dialect.
func (t *Tx) Visitor() nodes.Visitor {
	v, err := NewVisitor(t.conn.engine, t.conn.visitorOpts...)
	if err != nil {
		// OpenDB does not validate engine; render in the canonical dialect.
		return visitors.NewPostgresVisitor(t.conn.visitorOpts...)
	}
	return v
}

// QueryContext runs a query that returns rows.
func (t *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if t.done {
		return nil, ErrTxDone
	}
	t.conn.logger.Debug("query", "sql", query, "args", len(args))
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return rows, nil
}

// ExecContext runs a statement that returns no rows.
func (t *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if t.done {
		return nil, ErrTxDone
	}
	t.conn.logger.Debug("exec", "sql", query, "args", len(args))
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exec: %w", err)
	}
	return res, nil
}
