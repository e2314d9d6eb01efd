// Package quoting provides shared identifier and literal quoting utilities.
package quoting

import "strings"

// DoubleQuote quotes a SQL identifier using double quotes (PostgreSQL, SQLite, ANSI SQL).
// Internal double quotes are escaped by doubling them.
func DoubleQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Backtick quotes a SQL identifier using backticks (MySQL).
// Internal backticks are escaped by doubling them.
func Backtick(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// EscapeString escapes a string literal body by doubling single quotes.
//
// SECURITY: this is the only escaping applied to literals. Values supplied
// by callers at runtime belong in bind parameters, not literals.
func EscapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// EscapeStringBackslash escapes backslashes as well as single quotes, for
// MySQL's default sql_mode where backslash is an escape character.
func EscapeStringBackslash(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return EscapeString(s)
}
