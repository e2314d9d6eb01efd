package visitors

import (
	"strconv"

	"github.com/bawdo/typesql/internal/quoting"
)

// SQLiteVisitor generates SQLite-dialect SQL.
// Placeholders use the numbered form ?1, ?2 so a parameter may repeat.
type SQLiteVisitor struct {
	*baseVisitor
}

// NewSQLiteVisitor creates a SQLiteVisitor ready for use.
func NewSQLiteVisitor(opts ...Option) *SQLiteVisitor {
	v := &SQLiteVisitor{}
	v.baseVisitor = &baseVisitor{
		outer:       v,
		quote:       quoting.DoubleQuote,
		escape:      quoting.EscapeString,
		placeholder: func(i int) string { return "?" + strconv.Itoa(i+1) },
		numbered:    true,
	}
	v.applyOptions(opts)
	return v
}
