package dynamic

import (
	"fmt"

	"github.com/bawdo/typesql/schema"
)

// ColumnDef describes one column of a TableDef.
type ColumnDef struct {
	Name     string
	Type     Type
	Nullable bool
}

// TableDef describes a table known to a Catalog.
type TableDef struct {
	Name    string
	Columns []ColumnDef
}

// Column looks up a column by name.
func (t TableDef) Column(name string) (ColumnDef, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDef{}, false
}

// Catalog is the set of tables a Builder may reference. Tables keep the
// order in which they were added.
type Catalog struct {
	tables map[string]TableDef
	order  []string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{tables: make(map[string]TableDef)}
}

// Add registers t, replacing any earlier definition of the same name.
func (c *Catalog) Add(t TableDef) error {
	if t.Name == "" {
		return fmt.Errorf("%w: empty table name", ErrUnknownTable)
	}
	seen := make(map[string]bool, len(t.Columns))
	for _, col := range t.Columns {
		if col.Name == "" || seen[col.Name] {
			return fmt.Errorf("table %s: empty or repeated column %q", t.Name, col.Name)
		}
		seen[col.Name] = true
	}
	if _, ok := c.tables[t.Name]; !ok {
		c.order = append(c.order, t.Name)
	}
	c.tables[t.Name] = t
	return nil
}

// Table returns the definition of name.
func (c *Catalog) Table(name string) (TableDef, bool) {
	t, ok := c.tables[name]
	return t, ok
}

// Tables returns every definition in insertion order.
func (c *Catalog) Tables() []TableDef {
	out := make([]TableDef, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.tables[name])
	}
	return out
}

// AddProxy imports the columns of a generated proxy. Proxies of joined
// sources contribute one table per underlying table.
func (c *Catalog) AddProxy(proxy any) error {
	fields := schema.Columns(proxy)
	if len(fields) == 0 {
		return fmt.Errorf("proxy %T has no columns", proxy)
	}
	var defs []TableDef
	index := make(map[string]int)
	for _, f := range fields {
		i, ok := index[f.Table]
		if !ok {
			i = len(defs)
			index[f.Table] = i
			defs = append(defs, TableDef{Name: f.Table})
		}
		defs[i].Columns = append(defs[i].Columns, ColumnDef{
			Name:     f.Column,
			Type:     TypeOf(f.GoType),
			Nullable: f.Nullable,
		})
	}
	for _, d := range defs {
		if err := c.Add(d); err != nil {
			return err
		}
	}
	return nil
}

// CatalogFromProxy builds a catalog from generated table proxies, for
// example blog.Users{}.Proxy().
func CatalogFromProxy(proxies ...any) (*Catalog, error) {
	c := NewCatalog()
	for _, p := range proxies {
		if err := c.AddProxy(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}
