package dynamic

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParseExpr parses a condition or projection against scope. The grammar,
// loosest binding first:
//
//	expr    = and { OR and }
//	and     = not { AND not }
//	not     = NOT not | cmp
//	cmp     = atom [ op atom | IS [NOT] NULL ]      op: = <> != < <= > >=
//	atom    = table.column | integer | 'text' | TRUE | FALSE | $N | ( expr )
//
// Keywords are case-insensitive. $N is one-based, as rendered.
func ParseExpr(scope *Scope, text string) (Expr, error) {
	p, err := newParser(scope, text)
	if err != nil {
		return Expr{}, err
	}
	e, err := p.expr()
	if err != nil {
		return Expr{}, err
	}
	if !p.at(tokEOF) {
		return Expr{}, p.errorf("unexpected %s", p.peek())
	}
	return e, nil
}

// ParseList parses a comma-separated list of expressions.
func ParseList(scope *Scope, text string) ([]Expr, error) {
	p, err := newParser(scope, text)
	if err != nil {
		return nil, err
	}
	var out []Expr
	for {
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		if !p.accept(tokComma) {
			break
		}
	}
	if !p.at(tokEOF) {
		return nil, p.errorf("unexpected %s", p.peek())
	}
	return out, nil
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokInt
	tokString
	tokParam
	tokOp
	tokDot
	tokComma
	tokLParen
	tokRParen
)

type token struct {
	kind tokKind
	text string
	pos  int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return strconv.Quote(t.text)
}

func (t token) keyword(kw string) bool {
	return t.kind == tokIdent && strings.EqualFold(t.text, kw)
}

func lex(text string) ([]token, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: invalid UTF-8", ErrSyntax)
	}
	var toks []token
	i := 0
	for i < len(text) {
		c := text[i]
		start := i
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
			continue
		case isIdentStart(c):
			for i < len(text) && (isIdentStart(text[i]) || isDigit(text[i])) {
				i++
			}
			toks = append(toks, token{tokIdent, text[start:i], start})
		case isDigit(c) || (c == '-' && i+1 < len(text) && isDigit(text[i+1])):
			i++
			for i < len(text) && isDigit(text[i]) {
				i++
			}
			toks = append(toks, token{tokInt, text[start:i], start})
		case c == '$':
			i++
			for i < len(text) && isDigit(text[i]) {
				i++
			}
			if i == start+1 {
				return nil, fmt.Errorf("%w at %d: $ must be followed by a number", ErrSyntax, start)
			}
			toks = append(toks, token{tokParam, text[start+1 : i], start})
		case c == '\'':
			var sb strings.Builder
			i++
			for {
				if i >= len(text) {
					return nil, fmt.Errorf("%w at %d: unterminated string", ErrSyntax, start)
				}
				if text[i] == '\'' {
					if i+1 < len(text) && text[i+1] == '\'' {
						sb.WriteByte('\'')
						i += 2
						continue
					}
					i++
					break
				}
				sb.WriteByte(text[i])
				i++
			}
			toks = append(toks, token{tokString, sb.String(), start})
		case c == '<' || c == '>' || c == '!' || c == '=':
			i++
			if i < len(text) && (text[i] == '=' || (c == '<' && text[i] == '>')) {
				i++
			}
			op := text[start:i]
			if op == "!" {
				return nil, fmt.Errorf("%w at %d: unexpected '!'", ErrSyntax, start)
			}
			toks = append(toks, token{tokOp, op, start})
		case c == '.':
			i++
			toks = append(toks, token{tokDot, ".", start})
		case c == ',':
			i++
			toks = append(toks, token{tokComma, ",", start})
		case c == '(':
			i++
			toks = append(toks, token{tokLParen, "(", start})
		case c == ')':
			i++
			toks = append(toks, token{tokRParen, ")", start})
		default:
			r, _ := utf8.DecodeRuneInString(text[i:])
			return nil, fmt.Errorf("%w at %d: unexpected %q", ErrSyntax, start, r)
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(text)}), nil
}

// Identifiers are ASCII, matching the names tablegen accepts.
func isIdentStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

type parser struct {
	scope *Scope
	toks  []token
	pos   int
}

func newParser(scope *Scope, text string) (*parser, error) {
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	return &parser{scope: scope, toks: toks}, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) at(k tokKind) bool { return p.peek().kind == k }

func (p *parser) accept(k tokKind) bool {
	if p.at(k) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) acceptKeyword(kw string) bool {
	if p.peek().keyword(kw) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at %d: %s", ErrSyntax, p.peek().pos, fmt.Sprintf(format, args...))
}

func (p *parser) expr() (Expr, error) {
	l, err := p.and()
	if err != nil {
		return Expr{}, err
	}
	for p.acceptKeyword("OR") {
		r, err := p.and()
		if err != nil {
			return Expr{}, err
		}
		if l, err = Or(l, r); err != nil {
			return Expr{}, err
		}
	}
	return l, nil
}

func (p *parser) and() (Expr, error) {
	l, err := p.not()
	if err != nil {
		return Expr{}, err
	}
	for p.acceptKeyword("AND") {
		r, err := p.not()
		if err != nil {
			return Expr{}, err
		}
		if l, err = And(l, r); err != nil {
			return Expr{}, err
		}
	}
	return l, nil
}

func (p *parser) not() (Expr, error) {
	if p.acceptKeyword("NOT") {
		e, err := p.not()
		if err != nil {
			return Expr{}, err
		}
		return Not(e)
	}
	return p.cmp()
}

var comparisons = map[string]func(l, r Expr) (Expr, error){
	"=":  Eq,
	"<>": Ne,
	"!=": Ne,
	"<":  Lt,
	"<=": Le,
	">":  Gt,
	">=": Ge,
}

func (p *parser) cmp() (Expr, error) {
	l, err := p.atom()
	if err != nil {
		return Expr{}, err
	}
	if p.acceptKeyword("IS") {
		negate := p.acceptKeyword("NOT")
		if !p.acceptKeyword("NULL") {
			return Expr{}, p.errorf("expected NULL, got %s", p.peek())
		}
		if negate {
			return IsNotNull(l)
		}
		return IsNull(l)
	}
	if p.at(tokOp) {
		op := p.next()
		fn, ok := comparisons[op.text]
		if !ok {
			return Expr{}, fmt.Errorf("%w at %d: unknown operator %q", ErrSyntax, op.pos, op.text)
		}
		r, err := p.atom()
		if err != nil {
			return Expr{}, err
		}
		return fn(l, r)
	}
	return l, nil
}

func (p *parser) atom() (Expr, error) {
	t := p.peek()
	switch t.kind {
	case tokLParen:
		p.next()
		e, err := p.expr()
		if err != nil {
			return Expr{}, err
		}
		if !p.accept(tokRParen) {
			return Expr{}, p.errorf("expected ), got %s", p.peek())
		}
		return e, nil
	case tokInt:
		p.next()
		v, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return Expr{}, fmt.Errorf("%w at %d: %v", ErrSyntax, t.pos, err)
		}
		return IntLit(v), nil
	case tokString:
		p.next()
		return TextLit(t.text), nil
	case tokParam:
		p.next()
		n, err := strconv.Atoi(t.text)
		if err != nil || n < 1 {
			return Expr{}, fmt.Errorf("%w at %d: parameters start at $1", ErrSyntax, t.pos)
		}
		return Param(n - 1), nil
	case tokIdent:
		switch {
		case t.keyword("TRUE"):
			p.next()
			return BoolLit(true), nil
		case t.keyword("FALSE"):
			p.next()
			return BoolLit(false), nil
		}
		p.next()
		if !p.accept(tokDot) {
			return Expr{}, p.errorf("expected table.column after %s", t)
		}
		col := p.next()
		if col.kind != tokIdent {
			return Expr{}, fmt.Errorf("%w at %d: expected column name, got %s", ErrSyntax, col.pos, col)
		}
		return p.scope.Column(t.text, col.text)
	}
	return Expr{}, p.errorf("unexpected %s", t)
}
