package main

import (
	"sort"
	"strings"
)

// completionContext describes what kind of completion is appropriate.
type completionContext int

const (
	contextCommand   completionContext = iota // start of line or partial command
	contextTableName                          // after from/join
	contextColumnRef                          // after select/where/expr
	contextEngine                             // after engine/set_engine
	contextPlugin                             // after plugin
	contextPluginOff                          // after plugin off
	contextOperator                           // after a column ref in condition context
	contextDBTable                            // after load
)

var engineNames = []string{"mysql", "postgres", "sqlite"}
var operators = []string{
	"!=", "<", "<=", "<>", "=", ">", ">=",
	"and", "is", "is not null", "is null", "not", "or",
}

// replCompleter implements readline's AutoCompleter interface.
type replCompleter struct {
	sess *Session
}

// Do returns completion candidates for the current line/cursor position.
// length is the number of chars from end of line[:pos] that form the prefix being completed.
// newLine contains the suffixes to append for each candidate.
func (c *replCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	lineStr := string(line[:pos])
	ctx, prefix := c.parseContext(lineStr)

	var candidates []string
	switch ctx {
	case contextCommand:
		candidates = c.completeCommands(prefix)
	case contextTableName:
		candidates = c.completeTableNames(prefix)
	case contextColumnRef:
		candidates = c.completeColumnRef(prefix)
	case contextEngine:
		candidates = filterPrefix(engineNames, prefix)
	case contextPlugin:
		candidates = filterPrefix(append([]string{"off"}, c.sess.pluginNames()...), prefix)
	case contextPluginOff:
		candidates = filterPrefix(c.sess.plugins.names(), prefix)
	case contextOperator:
		candidates = filterPrefix(operators, prefix)
	case contextDBTable:
		candidates = c.completeDBTables(prefix)
	}

	for _, cand := range candidates {
		suffix := cand[len(prefix):]
		// Add trailing space for convenience, except after "table.".
		if !strings.HasSuffix(suffix, ".") {
			suffix += " "
		}
		newLine = append(newLine, []rune(suffix))
	}
	length = len([]rune(prefix))
	return
}

// parseContext examines the line up to cursor and determines what kind of
// completion is needed and the current prefix being typed.
func (c *replCompleter) parseContext(line string) (completionContext, string) {
	lower := strings.ToLower(line)

	for _, cmd := range c.sess.commands {
		if !strings.HasSuffix(cmd.prefix, " ") {
			continue // exact-match commands have no arg completion
		}
		if strings.HasPrefix(lower, cmd.prefix) && cmd.completer != nil {
			return cmd.completer(line[len(cmd.prefix):])
		}
	}

	// Default: command completion.
	return contextCommand, strings.TrimSpace(line)
}

// completeCommands returns command names matching the prefix.
func (c *replCompleter) completeCommands(prefix string) []string {
	return filterPrefix(c.sess.commandNames(), prefix)
}

// completeTableNames returns catalog table names matching prefix.
func (c *replCompleter) completeTableNames(prefix string) []string {
	var names []string
	for _, def := range c.sess.catalog.Tables() {
		names = append(names, def.Name)
	}
	sort.Strings(names)
	return filterPrefix(names, prefix)
}

// completeDBTables returns table names from the connected database.
func (c *replCompleter) completeDBTables(prefix string) []string {
	if c.sess.conn == nil {
		return nil
	}
	return filterPrefix(c.sess.conn.schemaTables(), prefix)
}

// completeColumnRef handles both table-name and table.column completion.
// Only tables in the current query's scope are offered.
func (c *replCompleter) completeColumnRef(prefix string) []string {
	if c.sess.query == nil {
		return nil
	}
	inScope := c.sess.query.Scope().Tables()

	tableName, _, hasDot := strings.Cut(prefix, ".")
	if !hasDot {
		var names []string
		for _, t := range inScope {
			names = append(names, t+".")
		}
		sort.Strings(names)
		return filterPrefix(names, prefix)
	}

	var candidates []string
	for _, t := range inScope {
		if t != tableName {
			continue
		}
		if def, ok := c.sess.catalog.Table(t); ok {
			for _, col := range def.Columns {
				candidates = append(candidates, t+"."+col.Name)
			}
		}
	}
	return filterPrefix(candidates, prefix)
}

// filterPrefix returns items that start with prefix (case-insensitive).
func filterPrefix(items []string, prefix string) []string {
	if prefix == "" {
		result := make([]string, len(items))
		copy(result, items)
		return result
	}
	lowerPrefix := strings.ToLower(prefix)
	var result []string
	for _, item := range items {
		if strings.HasPrefix(strings.ToLower(item), lowerPrefix) {
			result = append(result, item)
		}
	}
	return result
}

// lastToken returns the last whitespace-separated token, handling commas.
func lastToken(s string) string {
	lastSep := strings.LastIndexAny(s, " ,\t(")
	if lastSep >= 0 {
		return s[lastSep+1:]
	}
	return s
}
