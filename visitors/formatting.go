package visitors

import (
	"strings"

	"github.com/bawdo/typesql/nodes"
)

// FormattingVisitor wraps any nodes.Visitor (dialect visitor) and produces
// human-readable multi-line SQL. VisitSelectStatement and VisitJoin are real
// implementations that put each clause and each join on its own line;
// everything else delegates to the wrapped dialect.
type FormattingVisitor struct {
	inner nodes.Visitor
}

var _ nodes.Visitor = (*FormattingVisitor)(nil)
var _ nodes.Parameterizer = (*FormattingVisitor)(nil)

// NewFormattingVisitor constructs a FormattingVisitor wrapping the given
// dialect visitor.
func NewFormattingVisitor(inner nodes.Visitor) *FormattingVisitor {
	if inner == nil {
		panic("typesql: FormattingVisitor requires a non-nil inner visitor")
	}
	return &FormattingVisitor{inner: inner}
}

// Params delegates to the inner visitor if it implements nodes.Parameterizer,
// otherwise returns nil.
func (f *FormattingVisitor) Params() []int {
	if p, ok := f.inner.(nodes.Parameterizer); ok {
		return p.Params()
	}
	return nil
}

// Reset delegates to the inner visitor if it implements nodes.Parameterizer.
func (f *FormattingVisitor) Reset() {
	if p, ok := f.inner.(nodes.Parameterizer); ok {
		p.Reset()
	}
}

// --- Delegation methods ---

func (f *FormattingVisitor) VisitTable(node *nodes.Table) string {
	return f.inner.VisitTable(node)
}

func (f *FormattingVisitor) VisitAttribute(node *nodes.Attribute) string {
	return f.inner.VisitAttribute(node)
}

func (f *FormattingVisitor) VisitBindParam(node *nodes.BindParamNode) string {
	return f.inner.VisitBindParam(node)
}

func (f *FormattingVisitor) VisitLiteral(node *nodes.LiteralNode) string {
	return f.inner.VisitLiteral(node)
}

func (f *FormattingVisitor) VisitBinary(node *nodes.BinaryNode) string {
	return f.inner.VisitBinary(node)
}

func (f *FormattingVisitor) VisitUnary(node *nodes.UnaryNode) string {
	return f.inner.VisitUnary(node)
}

// --- Structural overrides ---

// VisitJoin renders the left source, then the join on a new indented line.
func (f *FormattingVisitor) VisitJoin(node *nodes.JoinNode) string {
	var sb strings.Builder
	sb.WriteString(node.Left.Accept(f))
	sb.WriteString("\n\t")
	sb.WriteString(node.Type.String())
	sb.WriteString(" JOIN ")
	sb.WriteString(node.Right.Accept(f.inner))
	sb.WriteString(" ON ")
	sb.WriteString(node.On.Accept(f.inner))
	return sb.String()
}

// VisitSelectStatement renders a SELECT statement in multi-line style.
// Projections use leading-comma continuation and the top-level AND chain of
// the WHERE clause is split one conjunct per line.
func (f *FormattingVisitor) VisitSelectStatement(node *nodes.SelectStatement) string {
	var sb strings.Builder

	sb.WriteString("SELECT")
	if len(node.Projections) == 0 {
		sb.WriteString(" *")
	} else {
		sb.WriteString(" ")
		sb.WriteString(node.Projections[0].Accept(f.inner))
		for _, p := range node.Projections[1:] {
			sb.WriteString("\n\t,")
			sb.WriteString(p.Accept(f.inner))
		}
	}

	if node.From != nil {
		sb.WriteString("\nFROM ")
		sb.WriteString(node.From.Accept(f))
	}

	if node.Where != nil {
		conjuncts := splitAnd(node.Where)
		sb.WriteString("\nWHERE ")
		sb.WriteString(conjuncts[0].Accept(f.inner))
		for _, w := range conjuncts[1:] {
			sb.WriteString("\n\tAND ")
			sb.WriteString(w.Accept(f.inner))
		}
	}

	return sb.String()
}

// splitAnd flattens a left-deep chain of AND nodes into its conjuncts.
func splitAnd(n nodes.Node) []nodes.Node {
	b, ok := n.(*nodes.BinaryNode)
	if !ok || b.Op != nodes.OpAnd {
		return []nodes.Node{n}
	}
	return append(splitAnd(b.Left), b.Right)
}
