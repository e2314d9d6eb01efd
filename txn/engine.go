package txn

import (
	"fmt"
	"strings"

	"github.com/bawdo/typesql/nodes"
	"github.com/bawdo/typesql/visitors"
)

// Engine names a supported database.
type Engine string

const (
	Postgres Engine = "postgres"
	MySQL    Engine = "mysql"
	SQLite   Engine = "sqlite"
)

// Engines lists the supported engines in display order.
var Engines = []Engine{Postgres, MySQL, SQLite}

// ParseEngine converts a user-supplied engine name.
func ParseEngine(s string) (Engine, error) {
	e := Engine(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Engines {
		if e == known {
			return e, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEngine, s)
}

// NewVisitor returns a fresh renderer for the engine's dialect.
func NewVisitor(e Engine, opts ...visitors.Option) (nodes.Visitor, error) {
	switch e {
	case Postgres:
		return visitors.NewPostgresVisitor(opts...), nil
	case MySQL:
		return visitors.NewMySQLVisitor(opts...), nil
	case SQLite:
		return visitors.NewSQLiteVisitor(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, string(e))
	}
}
