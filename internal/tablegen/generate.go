package tablegen

import (
	"bytes"
	"embed"
	"fmt"
	"go/format"
	"text/template"
)

//go:embed templates/*.go.tmpl
var templatesFS embed.FS

var templates *template.Template

func init() {
	var err error
	templates, err = template.ParseFS(templatesFS, "templates/*.go.tmpl")
	if err != nil {
		panic(fmt.Sprintf("tablegen: parsing templates: %v", err))
	}
}

// DefaultPackage is used when neither the schema nor the caller names one.
const DefaultPackage = "tables"

type fileData struct {
	Package   string
	NeedsTime bool
	Tables    []tableData
}

type tableData struct {
	Name    string
	GoName  string
	Columns []columnData
}

type columnData struct {
	Name        string
	GoName      string
	GoType      string
	Nullability string
	Tag         string
}

// Generate renders gofmt-formatted Go source for s. A non-empty pkg
// overrides the package declared in the schema.
func Generate(s *Schema, pkg string) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if pkg != "" && !packageName.MatchString(pkg) {
		return nil, fmt.Errorf("%w: package %q", ErrInvalidIdentifier, pkg)
	}
	data := buildData(s, pkg)

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "tables.go.tmpl", data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting generated source: %w", err)
	}
	return src, nil
}

func buildData(s *Schema, pkg string) fileData {
	data := fileData{Package: pkg}
	if data.Package == "" {
		data.Package = s.Package
	}
	if data.Package == "" {
		data.Package = DefaultPackage
	}

	for _, t := range s.Tables {
		td := tableData{Name: t.Name, GoName: t.GoName}
		prefix := lowerFirst(t.GoName)
		for _, c := range t.Columns {
			if c.Type == "time" {
				data.NeedsTime = true
			}
			nullability := "expr.NotNull"
			if c.Nullable {
				nullability = "expr.Nullable"
			}
			td.Columns = append(td.Columns, columnData{
				Name:        c.Name,
				GoName:      c.GoName,
				GoType:      goTypes[c.Type],
				Nullability: nullability,
				Tag:         prefix + c.GoName,
			})
		}
		data.Tables = append(data.Tables, td)
	}
	return data
}
