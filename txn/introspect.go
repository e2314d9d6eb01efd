package txn

import (
	"context"
	"fmt"
)

// Tables lists the user tables visible to the connection, sorted by name.
func (c *Conn) Tables(ctx context.Context) ([]string, error) {
	var query string
	switch c.engine {
	case Postgres:
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' ORDER BY table_name"
	case MySQL:
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() ORDER BY table_name"
	case SQLite:
		query = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, string(c.engine))
	}
	return c.queryStrings(ctx, query)
}

// Columns lists the columns of table in ordinal order.
func (c *Conn) Columns(ctx context.Context, table string) ([]string, error) {
	var query string
	switch c.engine {
	case Postgres:
		query = "SELECT column_name FROM information_schema.columns WHERE table_schema = 'public' AND table_name = $1 ORDER BY ordinal_position"
	case MySQL:
		query = "SELECT column_name FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ? ORDER BY ordinal_position"
	case SQLite:
		query = "SELECT name FROM pragma_table_info(?)"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, string(c.engine))
	}
	return c.queryStrings(ctx, query, table)
}

func (c *Conn) queryStrings(ctx context.Context, query string, params ...any) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("introspect: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var result []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("introspect: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
