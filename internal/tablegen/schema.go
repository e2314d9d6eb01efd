// Package tablegen turns a YAML description of tables into Go source that
// declares zero-size table types and column proxies for the typed builder.
package tablegen

import (
	"errors"
	"fmt"
	"regexp"

	"sigs.k8s.io/yaml"
)

var (
	ErrNoTables          = errors.New("schema declares no tables")
	ErrNoColumns         = errors.New("table declares no columns")
	ErrDuplicateTable    = errors.New("duplicate table")
	ErrDuplicateColumn   = errors.New("duplicate column")
	ErrUnknownType       = errors.New("unknown column type")
	ErrInvalidIdentifier = errors.New("invalid identifier")
)

// Schema is the root of a tables.yaml document.
type Schema struct {
	Package string  `json:"package"`
	Tables  []Table `json:"tables"`
}

// Table describes one table. GoName defaults to the CamelCase form of Name.
type Table struct {
	Name    string   `json:"name"`
	GoName  string   `json:"go_name,omitempty"`
	Columns []Column `json:"columns"`
}

// Column describes one column. Nullable columns are Nullable in both
// proxies.
type Column struct {
	Name     string `json:"name"`
	GoName   string `json:"go_name,omitempty"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable,omitempty"`
}

// goTypes maps schema type names to Go types.
var goTypes = map[string]string{
	"bool":    "bool",
	"int64":   "int64",
	"string":  "string",
	"float64": "float64",
	"time":    "time.Time",
}

var (
	sqlIdent     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	exportedName = regexp.MustCompile(`^[A-Z][A-Za-z0-9_]*$`)
	packageName  = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// Parse decodes and validates a YAML schema. Unknown keys are rejected.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.UnmarshalStrict(data, &s); err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks names, types and uniqueness. Default Go names are filled
// in so that collisions between derived names are caught too.
func (s *Schema) Validate() error {
	if s.Package != "" && !packageName.MatchString(s.Package) {
		return fmt.Errorf("%w: package %q", ErrInvalidIdentifier, s.Package)
	}
	if len(s.Tables) == 0 {
		return ErrNoTables
	}

	tables := make(map[string]bool, len(s.Tables))
	goTables := make(map[string]bool, len(s.Tables))
	for i := range s.Tables {
		t := &s.Tables[i]
		if !sqlIdent.MatchString(t.Name) {
			return fmt.Errorf("%w: table %q", ErrInvalidIdentifier, t.Name)
		}
		if t.GoName == "" {
			t.GoName = GoName(t.Name)
		}
		if !exportedName.MatchString(t.GoName) {
			return fmt.Errorf("%w: table %q go_name %q", ErrInvalidIdentifier, t.Name, t.GoName)
		}
		if tables[t.Name] || goTables[t.GoName] {
			return fmt.Errorf("%w: %q", ErrDuplicateTable, t.Name)
		}
		tables[t.Name] = true
		goTables[t.GoName] = true

		if err := t.validateColumns(); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) validateColumns() error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("%w: %q", ErrNoColumns, t.Name)
	}
	cols := make(map[string]bool, len(t.Columns))
	goCols := make(map[string]bool, len(t.Columns))
	for i := range t.Columns {
		c := &t.Columns[i]
		if !sqlIdent.MatchString(c.Name) {
			return fmt.Errorf("%w: column %s.%q", ErrInvalidIdentifier, t.Name, c.Name)
		}
		if c.GoName == "" {
			c.GoName = GoName(c.Name)
		}
		if !exportedName.MatchString(c.GoName) {
			return fmt.Errorf("%w: column %s.%s go_name %q", ErrInvalidIdentifier, t.Name, c.Name, c.GoName)
		}
		if _, ok := goTypes[c.Type]; !ok {
			return fmt.Errorf("%w: %s.%s has type %q", ErrUnknownType, t.Name, c.Name, c.Type)
		}
		if cols[c.Name] || goCols[c.GoName] {
			return fmt.Errorf("%w: %s.%s", ErrDuplicateColumn, t.Name, c.Name)
		}
		cols[c.Name] = true
		goCols[c.GoName] = true
	}
	return nil
}
