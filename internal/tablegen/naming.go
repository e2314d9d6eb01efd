package tablegen

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// initialisms are rendered fully upper-case, as golint expects.
var initialisms = map[string]bool{
	"api": true, "id": true, "ip": true, "json": true, "http": true,
	"sql": true, "uid": true, "uri": true, "url": true, "uuid": true,
}

// GoName converts a snake_case SQL name to an exported Go identifier:
// author_id becomes AuthorID.
func GoName(sqlName string) string {
	var b strings.Builder
	for _, part := range strings.Split(sqlName, "_") {
		if part == "" {
			continue
		}
		lower := strings.ToLower(part)
		if initialisms[lower] {
			b.WriteString(strings.ToUpper(part))
			continue
		}
		r, size := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(part[size:])
	}
	return b.String()
}

// lowerFirst lower-cases the first rune, turning an exported name into an
// unexported one.
func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
