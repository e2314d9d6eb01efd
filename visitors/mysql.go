package visitors

import (
	"github.com/bawdo/typesql/internal/quoting"
)

// MySQLVisitor generates MySQL-dialect SQL.
// Identifiers are quoted with backticks when quoting is enabled, string
// literals also escape backslashes, and placeholders are a bare ?, so
// BindArgs re-orders arguments to match placeholder order.
type MySQLVisitor struct {
	*baseVisitor
}

// NewMySQLVisitor creates a MySQLVisitor ready for use.
func NewMySQLVisitor(opts ...Option) *MySQLVisitor {
	v := &MySQLVisitor{}
	v.baseVisitor = &baseVisitor{
		outer:       v,
		quote:       quoting.Backtick,
		escape:      quoting.EscapeStringBackslash,
		placeholder: func(_ int) string { return "?" },
	}
	v.applyOptions(opts)
	return v
}
