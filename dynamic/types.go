// Package dynamic is the runtime-checked counterpart of the typed builder.
//
// It serves callers that only learn table shapes at run time, such as the
// REPL. Every expression carries its value type, nullability and
// aggregation state as data, and each operator checks the same rules the
// typed layer enforces at compile time. Ill-typed trees are reported as
// errors and never built.
package dynamic

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/bawdo/typesql/nodes"
)

// Type is the value type of an expression.
type Type int

const (
	// Unknown is the type of an untyped parameter or an introspected column
	// whose type is not known. It unifies with every other type.
	Unknown Type = iota
	Bool
	Int
	Text
	Float
	Time
)

var typeNames = [...]string{
	Unknown: "unknown",
	Bool:    "bool",
	Int:     "int",
	Text:    "text",
	Float:   "float",
	Time:    "time",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType accepts the common spellings of each type, case-insensitively.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "bool", "boolean":
		return Bool, nil
	case "int", "int64", "integer", "bigint":
		return Int, nil
	case "text", "string", "varchar":
		return Text, nil
	case "float", "float64", "real", "double":
		return Float, nil
	case "time", "timestamp", "datetime":
		return Time, nil
	case "unknown", "any":
		return Unknown, nil
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

var timeType = reflect.TypeOf(time.Time{})

// TypeOf maps a Go column type to a Type.
func TypeOf(t reflect.Type) Type {
	if t == timeType {
		return Time
	}
	switch t.Kind() {
	case reflect.Bool:
		return Bool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int
	case reflect.String:
		return Text
	case reflect.Float32, reflect.Float64:
		return Float
	}
	return Unknown
}

// unify returns the common type of a and b. Unknown yields to the other
// side.
func unify(a, b Type) (Type, bool) {
	switch {
	case a == Unknown:
		return b, true
	case b == Unknown, a == b:
		return a, true
	}
	return Unknown, false
}

// Expr is an expression node tagged with its static properties.
type Expr struct {
	Node     nodes.Node
	Type     Type
	Nullable bool
	Agg      bool
}

func (e Expr) String() string {
	var sb strings.Builder
	sb.WriteString(e.Type.String())
	if e.Nullable {
		sb.WriteString(" nullable")
	}
	if e.Agg {
		sb.WriteString(" aggregate")
	}
	return sb.String()
}
