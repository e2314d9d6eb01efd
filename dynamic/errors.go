package dynamic

import (
	"errors"
	"fmt"
)

var (
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrAggMismatch       = errors.New("aggregate and non-aggregate mixed")
	ErrNotBoolean        = errors.New("operand is not boolean")
	ErrNullablePredicate = errors.New("predicate may be NULL")
	ErrNotNullable       = errors.New("operand cannot be NULL")
	ErrUnknownColumn     = errors.New("unknown column")
	ErrUnknownTable      = errors.New("unknown table")
	ErrDuplicateTable    = errors.New("duplicate table")
	ErrUnknownType       = errors.New("unknown type")
	ErrNoSource          = errors.New("no FROM table")
	ErrSyntax            = errors.New("syntax error")
)

// TypeError reports an operator applied to operands it does not accept.
type TypeError struct {
	Op     string
	Err    error
	Detail string
}

func (e *TypeError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Err, e.Detail)
}

func (e *TypeError) Unwrap() error { return e.Err }

func typeErr(op string, err error, format string, args ...any) *TypeError {
	return &TypeError{Op: op, Err: err, Detail: fmt.Sprintf(format, args...)}
}
