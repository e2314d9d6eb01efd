package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/bawdo/typesql/nodes"
	"github.com/bawdo/typesql/txn"
	"github.com/bawdo/typesql/visitors"
)

const maxRows = 1000

type schemaCache struct {
	tables  []string
	columns map[string][]string // table name -> column names
}

type dbConn struct {
	conn   *txn.Conn
	dsn    string
	schema schemaCache
}

func connect(ctx context.Context, engine txn.Engine, dsn string, logger *slog.Logger) (*dbConn, error) {
	conn, err := txn.Open(ctx, engine, dsn, txn.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	c := &dbConn{conn: conn, dsn: dsn}
	c.schema.columns = make(map[string][]string)
	if c.schema.tables, err = conn.Tables(ctx); err != nil {
		// Non-fatal: schema introspection only feeds autocomplete and load.
		fmt.Fprintf(os.Stderr, "  Note: schema introspection failed: %v\n", err)
	}
	return c, nil
}

func (c *dbConn) engine() txn.Engine {
	return c.conn.Engine()
}

func (c *dbConn) close() error {
	return c.conn.Close()
}

// execQuery renders stmt in the connection's dialect and runs it inside a
// transaction, writing the SQL, bound arguments and result table to w.
func (c *dbConn) execQuery(ctx context.Context, stmt *nodes.SelectStatement, args []any, w io.Writer) error {
	return c.conn.WithTx(ctx, func(tx *txn.Tx) error {
		v := tx.Visitor()
		sqlStr := render(v, stmt)
		bound, err := visitors.BindArgs(v, args)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(w, "  %s;\n", sqlStr)
		if len(bound) > 0 {
			_, _ = fmt.Fprintf(w, "  Args: %v\n", bound)
		}

		rows, err := tx.QueryContext(ctx, sqlStr, bound...)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		defer func() { _ = rows.Close() }()
		result, err := formatRows(rows)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprint(w, result)
		return nil
	})
}

func formatRows(rows *sql.Rows) (string, error) {
	columns, err := rows.Columns()
	if err != nil {
		return "", fmt.Errorf("columns: %w", err)
	}

	var data [][]string
	truncated := false
	for rows.Next() {
		if len(data) >= maxRows {
			truncated = true
			break
		}
		vals := make([]*sql.NullString, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			vals[i] = &sql.NullString{}
			ptrs[i] = vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return "", fmt.Errorf("scan: %w", err)
		}
		row := make([]string, len(columns))
		for i, v := range vals {
			if v.Valid {
				row[i] = v.String
			} else {
				row[i] = "NULL"
			}
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("rows: %w", err)
	}

	result := formatTable(columns, data)
	if truncated {
		result += fmt.Sprintf("(truncated at %d rows)\n", maxRows)
	}
	return result, nil
}

func formatTable(columns []string, rows [][]string) string {
	if len(columns) == 0 {
		return "(0 rows)\n"
	}

	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	var b strings.Builder
	sep := buildSeparator(widths)

	b.WriteString(sep)
	b.WriteByte('|')
	for i, c := range columns {
		fmt.Fprintf(&b, " %-*s |", widths[i], c)
	}
	b.WriteByte('\n')
	b.WriteString(sep)

	for _, row := range rows {
		b.WriteByte('|')
		for i, cell := range row {
			fmt.Fprintf(&b, " %-*s |", widths[i], cell)
		}
		b.WriteByte('\n')
	}

	b.WriteString(sep)

	if n := len(rows); n == 1 {
		b.WriteString("(1 row)\n")
	} else {
		fmt.Fprintf(&b, "(%d rows)\n", n)
	}
	return b.String()
}

func buildSeparator(widths []int) string {
	var b strings.Builder
	b.WriteByte('+')
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteByte('+')
	}
	b.WriteByte('\n')
	return b.String()
}

func (c *dbConn) schemaTables() []string {
	return c.schema.tables
}

// columns returns the column names of table, cached after the first lookup.
func (c *dbConn) columns(ctx context.Context, table string) ([]string, error) {
	if cols, ok := c.schema.columns[table]; ok {
		return cols, nil
	}
	cols, err := c.conn.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	c.schema.columns[table] = cols
	return cols, nil
}
