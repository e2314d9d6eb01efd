package visitors

import (
	"errors"
	"strings"
	"testing"

	"github.com/bawdo/typesql/internal/testutil"
	"github.com/bawdo/typesql/nodes"
)

func assertContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("expected output to contain %q, got:\n%s", substr, s)
	}
}

// --- Table ---

func TestVisitTable(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	testutil.AssertSQL(t, NewPostgresVisitor(), users, `users`)
	testutil.AssertSQL(t, NewPostgresVisitor(WithQuotedIdentifiers()), users, `"users"`)
	testutil.AssertSQL(t, NewMySQLVisitor(WithQuotedIdentifiers()), users, "`users`")
	testutil.AssertSQL(t, NewSQLiteVisitor(WithQuotedIdentifiers()), users, `"users"`)
}

// --- Attribute ---

func TestVisitAttribute(t *testing.T) {
	t.Parallel()
	col := nodes.NewTable("users").Col("name")
	testutil.AssertSQL(t, NewPostgresVisitor(), col, `users.name`)
	testutil.AssertSQL(t, NewPostgresVisitor(WithQuotedIdentifiers()), col, `"users"."name"`)
	testutil.AssertSQL(t, NewMySQLVisitor(WithQuotedIdentifiers()), col, "`users`.`name`")
}

func TestVisitAttributeQuotingEscapesQuoteChar(t *testing.T) {
	t.Parallel()
	col := nodes.NewAttribute(`we"ird`, "id")
	testutil.AssertSQL(t, NewPostgresVisitor(WithQuotedIdentifiers()), col, `"we""ird"."id"`)
}

// --- Literals ---

func TestVisitLiteralString(t *testing.T) {
	t.Parallel()
	testutil.AssertSQL(t, NewPostgresVisitor(), nodes.Literal("Alice"), `'Alice'`)
}

func TestVisitLiteralStringEscapesSingleQuotes(t *testing.T) {
	t.Parallel()
	n := nodes.Literal("O'Brien")
	testutil.AssertSQL(t, NewPostgresVisitor(), n, `'O''Brien'`)
	testutil.AssertSQL(t, NewSQLiteVisitor(), n, `'O''Brien'`)
	testutil.AssertSQL(t, NewMySQLVisitor(), n, `'O''Brien'`)
}

func TestVisitLiteralStringBackslash(t *testing.T) {
	t.Parallel()
	n := nodes.Literal(`C:\tmp`)
	testutil.AssertSQL(t, NewPostgresVisitor(), n, `'C:\tmp'`)
	testutil.AssertSQL(t, NewMySQLVisitor(), n, `'C:\\tmp'`)
}

func TestVisitLiteralInt(t *testing.T) {
	t.Parallel()
	testutil.AssertSQL(t, NewPostgresVisitor(), nodes.Literal(42), `42`)
	testutil.AssertSQL(t, NewPostgresVisitor(), nodes.Literal(int64(-7)), `-7`)
}

func TestVisitLiteralBool(t *testing.T) {
	t.Parallel()
	testutil.AssertSQL(t, NewPostgresVisitor(), nodes.Literal(true), `TRUE`)
	testutil.AssertSQL(t, NewPostgresVisitor(), nodes.Literal(false), `FALSE`)
}

func TestVisitLiteralUnsupportedPanics(t *testing.T) {
	t.Parallel()
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for unsupported literal value")
		}
	}()
	(&nodes.LiteralNode{Value: 3.14}).Accept(NewPostgresVisitor())
}

// --- Bind params ---

func TestVisitBindParamPlaceholders(t *testing.T) {
	t.Parallel()
	p := nodes.NewBindParam(2)
	testutil.AssertSQL(t, NewPostgresVisitor(), p, `$3`)
	testutil.AssertSQL(t, NewSQLiteVisitor(), p, `?3`)
	testutil.AssertSQL(t, NewMySQLVisitor(), p, `?`)
}

func TestVisitBindParamRecordsOrder(t *testing.T) {
	t.Parallel()
	v := NewPostgresVisitor()
	n := nodes.And(
		nodes.NewBinary(nodes.OpEq, nodes.NewAttribute("users", "id"), nodes.NewBindParam(1)),
		nodes.NewBinary(nodes.OpEq, nodes.NewAttribute("users", "name"), nodes.NewBindParam(0)),
	)
	got := n.Accept(v)
	testutil.AssertEqual(t, got, `((users.id = $2) AND (users.name = $1))`)
	params := v.Params()
	if len(params) != 2 || params[0] != 1 || params[1] != 0 {
		t.Errorf("expected params [1 0], got %v", params)
	}
	v.Reset()
	if got := v.Params(); got != nil {
		t.Errorf("expected nil params after Reset, got %v", got)
	}
}

// --- Binary / Unary ---

func TestVisitBinaryParenthesizes(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	n := nodes.NewBinary(nodes.OpOr,
		nodes.NewBinary(nodes.OpGtEq, users.Col("age"), nodes.Literal(18)),
		nodes.NewBinary(nodes.OpNotEq, users.Col("name"), nodes.Literal("root")),
	)
	testutil.AssertSQL(t, NewPostgresVisitor(), n, `((users.age >= 18) OR (users.name <> 'root'))`)
}

func TestVisitUnary(t *testing.T) {
	t.Parallel()
	col := nodes.NewAttribute("posts", "id")
	v := NewPostgresVisitor()
	testutil.AssertSQL(t, v, nodes.NewUnary(nodes.OpIsNull, col), `(posts.id IS NULL)`)
	testutil.AssertSQL(t, v, nodes.NewUnary(nodes.OpIsNotNull, col), `(posts.id IS NOT NULL)`)
	testutil.AssertSQL(t, v, nodes.NewUnary(nodes.OpNot, nodes.Literal(true)), `(NOT TRUE)`)
}

// --- Joins ---

func TestVisitJoin(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	posts := nodes.NewTable("posts")
	on := nodes.NewBinary(nodes.OpEq, users.Col("id"), posts.Col("author_id"))
	j := nodes.NewJoin(nodes.LeftJoin, users, posts, on)
	testutil.AssertSQL(t, NewPostgresVisitor(), j,
		`users LEFT JOIN posts ON (users.id = posts.author_id)`)
}

func TestVisitJoinKinds(t *testing.T) {
	t.Parallel()
	on := nodes.Literal(true)
	for _, tt := range []struct {
		kind nodes.JoinType
		want string
	}{
		{nodes.InnerJoin, "a INNER JOIN b ON TRUE"},
		{nodes.LeftJoin, "a LEFT JOIN b ON TRUE"},
		{nodes.RightJoin, "a RIGHT JOIN b ON TRUE"},
		{nodes.FullJoin, "a FULL JOIN b ON TRUE"},
	} {
		j := nodes.NewJoin(tt.kind, nodes.NewTable("a"), nodes.NewTable("b"), on)
		testutil.AssertSQL(t, NewPostgresVisitor(), j, tt.want)
	}
}

func TestVisitChainedJoin(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	posts := nodes.NewTable("posts")
	comments := nodes.NewTable("comments")
	first := nodes.NewJoin(nodes.LeftJoin, users, posts,
		nodes.NewBinary(nodes.OpEq, users.Col("id"), posts.Col("author_id")))
	second := nodes.NewJoin(nodes.LeftJoin, first, comments,
		nodes.NewBinary(nodes.OpEq, posts.Col("id"), comments.Col("post_id")))
	testutil.AssertSQL(t, NewPostgresVisitor(), second,
		`users LEFT JOIN posts ON (users.id = posts.author_id) LEFT JOIN comments ON (posts.id = comments.post_id)`)
}

// --- Select statements ---

func TestVisitSelectStatement(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	stmt := &nodes.SelectStatement{
		From:        users,
		Projections: []nodes.Node{users.Col("id")},
	}
	testutil.AssertSQL(t, NewPostgresVisitor(), stmt, `SELECT users.id FROM users`)
}

func TestVisitSelectStatementStar(t *testing.T) {
	t.Parallel()
	stmt := &nodes.SelectStatement{From: nodes.NewTable("users")}
	testutil.AssertSQL(t, NewPostgresVisitor(), stmt, `SELECT * FROM users`)
}

func TestVisitSelectStatementWhere(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	stmt := &nodes.SelectStatement{
		From:        users,
		Projections: []nodes.Node{users.Col("id"), users.Col("name")},
		Where: nodes.And(
			nodes.NewBinary(nodes.OpEq, users.Col("active"), nodes.Literal(true)),
			nodes.NewBinary(nodes.OpGt, users.Col("age"), nodes.NewBindParam(0)),
		),
	}
	testutil.AssertSQL(t, NewPostgresVisitor(), stmt,
		`SELECT users.id, users.name FROM users WHERE ((users.active = TRUE) AND (users.age > $1))`)
	testutil.AssertSQL(t, NewMySQLVisitor(WithQuotedIdentifiers()), stmt,
		"SELECT `users`.`id`, `users`.`name` FROM `users` WHERE ((`users`.`active` = TRUE) AND (`users`.`age` > ?))")
}

func TestVisitSelectStatementIsDeterministic(t *testing.T) {
	t.Parallel()
	users := nodes.NewTable("users")
	stmt := &nodes.SelectStatement{
		From:        users,
		Projections: []nodes.Node{users.Col("id")},
		Where:       nodes.NewBinary(nodes.OpEq, users.Col("id"), nodes.NewBindParam(0)),
	}
	first := stmt.Accept(NewSQLiteVisitor())
	second := stmt.Accept(NewSQLiteVisitor())
	testutil.AssertEqual(t, first, second)
	assertContains(t, first, "?1")
}

// --- BindArgs ---

func TestBindArgsNumberedPassesThrough(t *testing.T) {
	t.Parallel()
	v := NewPostgresVisitor()
	stmt := nodes.And(
		nodes.NewBinary(nodes.OpEq, nodes.NewAttribute("t", "a"), nodes.NewBindParam(1)),
		nodes.NewBinary(nodes.OpEq, nodes.NewAttribute("t", "b"), nodes.NewBindParam(0)),
	)
	stmt.Accept(v)
	got, err := BindArgs(v, []any{"x", "y"})
	testutil.AssertNoError(t, err)
	if len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Errorf("expected args unchanged, got %v", got)
	}
}

func TestBindArgsMySQLReordersAndDuplicates(t *testing.T) {
	t.Parallel()
	v := NewMySQLVisitor()
	stmt := nodes.And(
		nodes.NewBinary(nodes.OpEq, nodes.NewAttribute("t", "a"), nodes.NewBindParam(1)),
		nodes.NewBinary(nodes.OpEq, nodes.NewAttribute("t", "b"), nodes.NewBindParam(1)),
	)
	stmt = nodes.And(stmt, nodes.NewBinary(nodes.OpEq, nodes.NewAttribute("t", "c"), nodes.NewBindParam(0)))
	stmt.Accept(v)
	got, err := BindArgs(v, []any{"x", "y"})
	testutil.AssertNoError(t, err)
	if len(got) != 3 || got[0] != "y" || got[1] != "y" || got[2] != "x" {
		t.Errorf("expected [y y x], got %v", got)
	}
}

func TestBindArgsMissing(t *testing.T) {
	t.Parallel()
	v := NewPostgresVisitor()
	nodes.NewBindParam(3).Accept(v)
	_, err := BindArgs(v, []any{1})
	testutil.AssertError(t, err)
	if !errors.Is(err, ErrMissingArg) {
		t.Errorf("expected ErrMissingArg, got %v", err)
	}
	assertContains(t, err.Error(), "$4")
}

func TestBindArgsRejectsSurplusInEveryDialect(t *testing.T) {
	t.Parallel()
	for name, v := range map[string]nodes.Visitor{
		"postgres": NewPostgresVisitor(),
		"sqlite":   NewSQLiteVisitor(),
		"mysql":    NewMySQLVisitor(),
	} {
		nodes.NewBinary(nodes.OpEq, nodes.NewAttribute("t", "a"), nodes.NewBindParam(0)).Accept(v)
		_, err := BindArgs(v, []any{1, 2})
		if !errors.Is(err, ErrExtraArg) {
			t.Errorf("%s: expected ErrExtraArg, got %v", name, err)
		}
	}
}

func TestBindArgsNoPlaceholders(t *testing.T) {
	t.Parallel()
	v := NewSQLiteVisitor()
	nodes.NewAttribute("t", "a").Accept(v)
	got, err := BindArgs(v, nil)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(got), 0)

	_, err = BindArgs(v, []any{"x"})
	if !errors.Is(err, ErrExtraArg) {
		t.Errorf("expected ErrExtraArg, got %v", err)
	}
}

func TestBindArgsThroughFormattingVisitor(t *testing.T) {
	t.Parallel()
	fv := NewFormattingVisitor(NewMySQLVisitor())
	nodes.And(
		nodes.NewBinary(nodes.OpEq, nodes.NewAttribute("t", "a"), nodes.NewBindParam(1)),
		nodes.NewBinary(nodes.OpEq, nodes.NewAttribute("t", "b"), nodes.NewBindParam(0)),
	).Accept(fv)
	got, err := BindArgs(fv, []any{"x", "y"})
	testutil.AssertNoError(t, err)
	if len(got) != 2 || got[0] != "y" || got[1] != "x" {
		t.Errorf("expected [y x], got %v", got)
	}
}

func TestBindArgsForeignVisitor(t *testing.T) {
	t.Parallel()
	args := []any{1, 2}
	got, err := BindArgs(testutil.StubVisitor{}, args)
	testutil.AssertNoError(t, err)
	if len(got) != 2 {
		t.Errorf("expected args unchanged, got %v", got)
	}
}
