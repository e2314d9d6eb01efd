package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bawdo/typesql/dynamic"
	"github.com/bawdo/typesql/plugins"
	"github.com/bawdo/typesql/plugins/softdelete"
)

// softdeleteTarget is one table.column pair the plugin filters on.
type softdeleteTarget struct {
	table  string
	column string
}

func (t softdeleteTarget) String() string { return t.table + "." + t.column }

// configureSoftdelete handles:
//
//	plugin softdelete [column]                   every table with that column
//	plugin softdelete <column> on <table> ...    the named tables only
//	plugin softdelete <table.column>, ...        per-table columns
//
// Named tables are checked against the catalog: the column must exist and be
// nullable, since the plugin adds "column IS NULL". Without named tables the
// plugin covers, at render time, every registered table that has a nullable
// column of that name.
func configureSoftdelete(s *Session, args string) error {
	rest := strings.TrimSpace(args)

	var targets []softdeleteTarget
	switch {
	case strings.Contains(rest, "."):
		for pair := range strings.SplitSeq(rest, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			table, col, _ := strings.Cut(pair, ".")
			if table == "" || col == "" {
				return fmt.Errorf("invalid table.column pair: %q", pair)
			}
			targets = append(targets, softdeleteTarget{table, col})
		}

	case strings.Contains(strings.ToLower(rest), " on "):
		idx := strings.Index(strings.ToLower(rest), " on ")
		col := strings.TrimSpace(rest[:idx])
		tables := strings.Fields(rest[idx+4:])
		if col == "" || len(tables) == 0 {
			return errors.New("usage: plugin softdelete <column> on <table1> [table2 ...]")
		}
		for _, t := range tables {
			targets = append(targets, softdeleteTarget{t, col})
		}

	default:
		col := "deleted_at"
		if rest != "" {
			col = strings.Fields(rest)[0]
		}
		return enableSoftdeleteColumn(s, col)
	}

	seen := make(map[string]bool, len(targets))
	for _, t := range targets {
		if seen[t.table] {
			return fmt.Errorf("softdelete: table %s listed twice", t.table)
		}
		seen[t.table] = true
		if err := checkSoftdeleteTarget(s.catalog, t); err != nil {
			return fmt.Errorf("softdelete: %w", err)
		}
	}

	opts := make([]softdelete.Option, len(targets))
	names := make([]string, len(targets))
	for i, t := range targets {
		opts[i] = softdelete.WithTableColumn(t.table, t.column)
		names[i] = t.String()
	}
	slices.Sort(names)
	status := strings.Join(names, ", ")
	s.plugins.register(pluginEntry{
		name:    "softdelete",
		factory: func() plugins.Transformer { return softdelete.New(opts...) },
		status:  func() string { return status },
		color:   "#CC6666",
	})
	_, _ = fmt.Fprintf(s.out, "  Soft-delete enabled (%s)\n", status)
	return nil
}

// checkSoftdeleteTarget type-checks "table.column IS NULL" against the
// catalog.
func checkSoftdeleteTarget(catalog *dynamic.Catalog, t softdeleteTarget) error {
	b, err := dynamic.New(catalog).From(t.table)
	if err != nil {
		return err
	}
	col, err := b.Scope().Column(t.table, t.column)
	if err != nil {
		return err
	}
	_, err = dynamic.IsNull(col)
	return err
}

// enableSoftdeleteColumn registers the plugin for every table that has a
// nullable column named col when the query is rendered, so tables
// registered later are covered too.
func enableSoftdeleteColumn(s *Session, col string) error {
	s.plugins.register(pluginEntry{
		name: "softdelete",
		factory: func() plugins.Transformer {
			return softdelete.New(softdelete.WithColumn(col), softdelete.WithTables(softdeleteTables(s.catalog, col)...))
		},
		status: func() string { return "column: " + col },
		color:  "#CC6666",
	})
	_, _ = fmt.Fprintf(s.out, "  Soft-delete enabled (column: %s)\n", col)
	if len(softdeleteTables(s.catalog, col)) == 0 {
		_, _ = fmt.Fprintf(s.out, "  Note: no registered table has a nullable %s column yet\n", col)
	}
	return nil
}

// softdeleteTables lists the catalog tables with a nullable column col.
func softdeleteTables(catalog *dynamic.Catalog, col string) []string {
	var names []string
	for _, def := range catalog.Tables() {
		if c, ok := def.Column(col); ok && c.Nullable {
			names = append(names, def.Name)
		}
	}
	return names
}
