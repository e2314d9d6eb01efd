package main

import (
	"fmt"
	"strings"
)

// cmdAST summarises the current query: its sources with their effective
// nullability, the typed projections and the WHERE clause.
func (s *Session) cmdAST() error {
	if s.query == nil {
		return errNoQuery
	}
	stmt, err := s.query.Statement()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(s.out, "  Engine: %s\n", s.engine)
	s.printASTScope()
	s.printASTProjections()
	if stmt.Where != nil {
		_, _ = fmt.Fprintf(s.out, "  WHERE:  %d condition(s)\n", conjunctCount(stmt.Where))
	}
	if names := s.plugins.names(); len(names) > 0 {
		_, _ = fmt.Fprintf(s.out, "  PLUGINS: %s\n", strings.Join(names, ", "))
	}
	return nil
}

// printASTScope lists each table in scope with every column's type as seen
// by the query, which differs from the catalog after outer joins.
func (s *Session) printASTScope() {
	scope := s.query.Scope()
	for i, table := range scope.Tables() {
		label := "FROM:  "
		if i > 0 {
			label = "JOIN:  "
		}
		def, ok := s.catalog.Table(table)
		if !ok {
			_, _ = fmt.Fprintf(s.out, "  %s %s\n", label, table)
			continue
		}
		cols := make([]string, 0, len(def.Columns))
		for _, c := range def.Columns {
			e, err := scope.Column(table, c.Name)
			if err != nil {
				continue
			}
			cols = append(cols, fmt.Sprintf("%s %s", c.Name, e))
		}
		_, _ = fmt.Fprintf(s.out, "  %s %s (%s)\n", label, table, strings.Join(cols, ", "))
	}
}

func (s *Session) printASTProjections() {
	exprs := s.query.Projections()
	if len(exprs) == 0 {
		_, _ = fmt.Fprintln(s.out, "  SELECT: *")
		return
	}
	for i, e := range exprs {
		_, _ = fmt.Fprintf(s.out, "  SELECT[%d]: %s  -- %s\n", i, render(s.visitor, e.Node), e)
	}
}
