package dynamic

import "github.com/bawdo/typesql/nodes"

// BoolLit returns a boolean literal.
func BoolLit(v bool) Expr { return Expr{Node: nodes.Literal(v), Type: Bool} }

// IntLit returns an integer literal.
func IntLit(v int64) Expr { return Expr{Node: nodes.Literal(v), Type: Int} }

// TextLit returns a string literal.
func TextLit(v string) Expr { return Expr{Node: nodes.Literal(v), Type: Text} }

// Param returns an untyped, non-null parameter. idx is zero-based.
func Param(idx int) Expr { return Expr{Node: nodes.NewBindParam(idx), Type: Unknown} }

func Eq(l, r Expr) (Expr, error) { return compare(nodes.OpEq, l, r) }
func Ne(l, r Expr) (Expr, error) { return compare(nodes.OpNotEq, l, r) }
func Lt(l, r Expr) (Expr, error) { return compare(nodes.OpLt, l, r) }
func Le(l, r Expr) (Expr, error) { return compare(nodes.OpLtEq, l, r) }
func Gt(l, r Expr) (Expr, error) { return compare(nodes.OpGt, l, r) }
func Ge(l, r Expr) (Expr, error) { return compare(nodes.OpGtEq, l, r) }

// compare accepts operands of one type, or Unknown, with any nullability.
// The result is a non-null boolean.
func compare(op string, l, r Expr) (Expr, error) {
	if l.Agg != r.Agg {
		return Expr{}, typeErr(op, ErrAggMismatch, "%s %s %s", l, op, r)
	}
	if _, ok := unify(l.Type, r.Type); !ok {
		return Expr{}, typeErr(op, ErrTypeMismatch, "%s %s %s", l.Type, op, r.Type)
	}
	return Expr{Node: nodes.NewBinary(op, l.Node, r.Node), Type: Bool, Agg: l.Agg}, nil
}

func And(l, r Expr) (Expr, error) { return logical(nodes.OpAnd, l, r) }
func Or(l, r Expr) (Expr, error)  { return logical(nodes.OpOr, l, r) }

// logical needs boolean operands sharing aggregation. The result is
// nullable when either side is.
func logical(op string, l, r Expr) (Expr, error) {
	if err := checkBool(op, l); err != nil {
		return Expr{}, err
	}
	if err := checkBool(op, r); err != nil {
		return Expr{}, err
	}
	if l.Agg != r.Agg {
		return Expr{}, typeErr(op, ErrAggMismatch, "%s %s %s", l, op, r)
	}
	return Expr{Node: nodes.NewBinary(op, l.Node, r.Node), Type: Bool, Nullable: l.Nullable || r.Nullable, Agg: l.Agg}, nil
}

// Not negates a boolean, keeping its nullability.
func Not(e Expr) (Expr, error) {
	if err := checkBool("NOT", e); err != nil {
		return Expr{}, err
	}
	e.Node = nodes.NewUnary(nodes.OpNot, e.Node)
	e.Type = Bool
	return e, nil
}

// Widen marks e as nullable.
func Widen(e Expr) Expr {
	e.Nullable = true
	return e
}

// IsNull tests a nullable expression for NULL.
func IsNull(e Expr) (Expr, error) { return nullTest(nodes.OpIsNull, e) }

// IsNotNull tests a nullable expression for a value.
func IsNotNull(e Expr) (Expr, error) { return nullTest(nodes.OpIsNotNull, e) }

func nullTest(op nodes.UnaryOp, e Expr) (Expr, error) {
	if !e.Nullable {
		return Expr{}, typeErr(op.String(), ErrNotNullable, "%s", e)
	}
	return Expr{Node: nodes.NewUnary(op, e.Node), Type: Bool, Agg: e.Agg}, nil
}

func checkBool(op string, e Expr) error {
	if e.Type != Bool && e.Type != Unknown {
		return typeErr(op, ErrNotBoolean, "got %s", e.Type)
	}
	return nil
}

// checkPredicate applies the rules for WHERE and ON conditions: a non-null,
// non-aggregate boolean.
func checkPredicate(clause string, e Expr) error {
	if err := checkBool(clause, e); err != nil {
		return err
	}
	if e.Nullable {
		return typeErr(clause, ErrNullablePredicate, "compare it or test it with IS NULL")
	}
	if e.Agg {
		return typeErr(clause, ErrAggMismatch, "aggregate in %s", clause)
	}
	return nil
}
