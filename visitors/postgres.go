package visitors

import (
	"strconv"

	"github.com/bawdo/typesql/internal/quoting"
)

// PostgresVisitor generates PostgreSQL-dialect SQL. With default options its
// output is the canonical rendering: bare identifiers and $N placeholders.
type PostgresVisitor struct {
	*baseVisitor
}

// NewPostgresVisitor creates a PostgresVisitor ready for use.
func NewPostgresVisitor(opts ...Option) *PostgresVisitor {
	v := &PostgresVisitor{}
	v.baseVisitor = &baseVisitor{
		outer:       v,
		quote:       quoting.DoubleQuote,
		escape:      quoting.EscapeString,
		placeholder: func(i int) string { return "$" + strconv.Itoa(i+1) },
		numbered:    true,
	}
	v.applyOptions(opts)
	return v
}
