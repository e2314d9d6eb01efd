// Package schema describes tables to the typed builder.
//
// A table is a zero-size type implementing Table. Its proxies are structs of
// zero-size Col handles, one field per column; each handle's type parameters
// carry the owning table, the Go value type, the nullability tag and the SQL
// column name. Proxies are normally generated by cmd/tablegen.
package schema

import (
	"fmt"
	"reflect"

	"github.com/bawdo/typesql/expr"
	"github.com/bawdo/typesql/nodes"
)

// TableNamer is implemented by table types.
type TableNamer interface {
	TableName() string
}

// ColumnNamer is implemented by per-column tag types.
type ColumnNamer interface {
	ColumnName() string
}

// Table is the contract the builder needs from a table type. P is the proxy
// handed to filters and selects; NP is the same field set with every column
// Nullable, used when the table sits on the outer side of a join.
type Table[P, NP any] interface {
	TableNamer
	Proxy() P
	NullableProxy() NP
}

// Col is a zero-size column handle.
type Col[Tbl TableNamer, T any, N expr.Nullability, C ColumnNamer] struct{}

// Expr returns the column as a typed expression.
func (Col[Tbl, T, N, C]) Expr() expr.Expr[T, N, expr.NonAgg] {
	var tbl Tbl
	var c C
	return expr.FromNode[T, N, expr.NonAgg](nodes.NewAttribute(tbl.TableName(), c.ColumnName()))
}

// Describe reports the column's metadata.
func (Col[Tbl, T, N, C]) Describe() ColumnInfo {
	var tbl Tbl
	var c C
	return ColumnInfo{
		Table:    tbl.TableName(),
		Column:   c.ColumnName(),
		Nullable: expr.IsNullable[N](),
		GoType:   reflect.TypeFor[T](),
	}
}

// ColumnInfo is the runtime view of a Col.
type ColumnInfo struct {
	Table    string
	Column   string
	Nullable bool
	GoType   reflect.Type
}

// Describer is implemented by every Col instantiation.
type Describer interface {
	Describe() ColumnInfo
}

// Field pairs a proxy field name with its column metadata.
type Field struct {
	Name string
	ColumnInfo
}

// JoinProxy is the proxy of a joined source: L is the left source's proxy,
// R the right table's.
type JoinProxy[L, R any] struct {
	L L
	R R
}

// Columns lists the column handles in proxy, in field order. Fields that are
// not column handles are skipped. Nested JoinProxy values are flattened left
// to right. Passing anything but a struct panics.
func Columns(proxy any) []Field {
	v := reflect.ValueOf(proxy)
	if v.Kind() != reflect.Struct {
		panic(fmt.Sprintf("typesql: Columns needs a proxy struct, got %T", proxy))
	}
	var out []Field
	collectColumns(v, &out)
	return out
}

func collectColumns(v reflect.Value, out *[]Field) {
	t := v.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		fv := v.Field(i)
		if d, ok := fv.Interface().(Describer); ok {
			*out = append(*out, Field{Name: sf.Name, ColumnInfo: d.Describe()})
			continue
		}
		if fv.Kind() == reflect.Struct {
			collectColumns(fv, out)
		}
	}
}
