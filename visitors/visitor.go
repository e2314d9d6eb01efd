// Package visitors provides SQL dialect generators that walk the AST.
package visitors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bawdo/typesql/nodes"
)

// ErrMissingArg is returned by BindArgs when a placeholder refers to an
// argument the caller did not supply.
var ErrMissingArg = errors.New("typesql: missing argument for placeholder")

// ErrExtraArg is returned by BindArgs when the caller supplies arguments no
// placeholder refers to.
var ErrExtraArg = errors.New("typesql: argument without placeholder")

// Option configures a visitor at construction time.
type Option func(*baseVisitor)

// WithQuotedIdentifiers quotes table and column names with the dialect's
// identifier quote. Identifiers are rendered bare by default.
func WithQuotedIdentifiers() Option {
	return func(b *baseVisitor) {
		b.quoteIdents = true
	}
}

// baseVisitor implements the shared SQL generation logic used by all dialects.
// Dialect-specific visitors embed *baseVisitor and set the outer field to
// themselves, enabling correct virtual dispatch through the Visitor interface.
type baseVisitor struct {
	// outer is the concrete dialect visitor. All recursive Accept calls
	// go through outer so that dialect overrides are respected.
	outer nodes.Visitor

	// quote quotes a SQL identifier in the dialect's style.
	quote func(string) string

	// quoteIdents enables identifier quoting.
	quoteIdents bool

	// escape escapes the body of a string literal.
	escape func(string) string

	// placeholder returns the bind placeholder for a zero-based parameter index.
	// PostgreSQL uses $1, $2; SQLite ?1, ?2; MySQL a bare ?.
	placeholder func(int) string

	// numbered is true when placeholders carry their own index, so driver
	// arguments are passed through in index order.
	numbered bool

	// params accumulates parameter indexes in emission order.
	params []int
}

// applyOptions applies functional options to the baseVisitor.
func (b *baseVisitor) applyOptions(opts []Option) {
	for _, o := range opts {
		o(b)
	}
}

// Params returns the parameter indexes emitted during the last SQL generation.
func (b *baseVisitor) Params() []int {
	return b.params
}

// Reset clears collected parameters for reuse.
func (b *baseVisitor) Reset() {
	b.params = nil
}

func (b *baseVisitor) ident(s string) string {
	if b.quoteIdents {
		return b.quote(s)
	}
	return s
}

func (b *baseVisitor) VisitTable(n *nodes.Table) string {
	return b.ident(n.Name)
}

func (b *baseVisitor) VisitJoin(n *nodes.JoinNode) string {
	var sb strings.Builder
	sb.WriteString(n.Left.Accept(b.outer))
	sb.WriteString(" ")
	sb.WriteString(n.Type.String())
	sb.WriteString(" JOIN ")
	sb.WriteString(n.Right.Accept(b.outer))
	sb.WriteString(" ON ")
	sb.WriteString(n.On.Accept(b.outer))
	return sb.String()
}

func (b *baseVisitor) VisitAttribute(n *nodes.Attribute) string {
	return b.ident(n.Table) + "." + b.ident(n.Name)
}

func (b *baseVisitor) VisitBindParam(n *nodes.BindParamNode) string {
	b.params = append(b.params, n.Index)
	return b.placeholder(n.Index)
}

func (b *baseVisitor) VisitLiteral(n *nodes.LiteralNode) string {
	switch v := n.Value.(type) {
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case int64:
		return strconv.FormatInt(v, 10)
	case string:
		return "'" + b.escape(v) + "'"
	default:
		panic(fmt.Sprintf("typesql: unsupported literal type %T", v))
	}
}

func (b *baseVisitor) VisitBinary(n *nodes.BinaryNode) string {
	return "(" + n.Left.Accept(b.outer) + " " + n.Op + " " + n.Right.Accept(b.outer) + ")"
}

func (b *baseVisitor) VisitUnary(n *nodes.UnaryNode) string {
	if n.Op.Prefix() {
		return "(" + n.Op.String() + " " + n.Expr.Accept(b.outer) + ")"
	}
	return "(" + n.Expr.Accept(b.outer) + " " + n.Op.String() + ")"
}

func (b *baseVisitor) VisitSelectStatement(n *nodes.SelectStatement) string {
	var sb strings.Builder

	sb.WriteString("SELECT ")
	b.writeProjections(&sb, n.Projections)
	b.writeNodeClause(&sb, " FROM ", n.From)
	b.writeNodeClause(&sb, " WHERE ", n.Where)

	return sb.String()
}

// writeNodeClause writes "keyword node" if node is non-nil.
func (b *baseVisitor) writeNodeClause(sb *strings.Builder, keyword string, n nodes.Node) {
	if n != nil {
		sb.WriteString(keyword)
		sb.WriteString(n.Accept(b.outer))
	}
}

func (b *baseVisitor) writeProjections(sb *strings.Builder, projections []nodes.Node) {
	if len(projections) == 0 {
		sb.WriteString("*")
		return
	}
	for i, p := range projections {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Accept(b.outer))
	}
}

// bindArgs maps caller arguments (indexed by parameter) onto the list the
// driver expects for the SQL produced by the last generation.
// Every dialect rejects surplus arguments so a call behaves the same on
// each engine.
func (b *baseVisitor) bindArgs(args []any) ([]any, error) {
	need := 0
	for _, idx := range b.params {
		if idx >= len(args) {
			return nil, fmt.Errorf("%w: %s needs %d argument(s), got %d",
				ErrMissingArg, b.placeholder(idx), idx+1, len(args))
		}
		need = max(need, idx+1)
	}
	if len(args) > need {
		return nil, fmt.Errorf("%w: query uses %d argument(s), got %d", ErrExtraArg, need, len(args))
	}
	if b.numbered {
		return args, nil
	}
	bound := make([]any, len(b.params))
	for i, idx := range b.params {
		bound[i] = args[idx]
	}
	return bound, nil
}

// argBinder is implemented by every dialect visitor in this package through
// the embedded *baseVisitor.
type argBinder interface {
	bindArgs(args []any) ([]any, error)
}

// BindArgs returns the driver argument list for the SQL most recently
// generated by v. args is indexed by parameter number: args[0] binds $1.
// Visitors from other packages get args back unchanged.
func BindArgs(v nodes.Visitor, args []any) ([]any, error) {
	if f, ok := v.(*FormattingVisitor); ok {
		v = f.inner
	}
	if ab, ok := v.(argBinder); ok {
		return ab.bindArgs(args)
	}
	return args, nil
}
