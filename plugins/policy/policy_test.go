package policy

import (
	"errors"
	"testing"

	"github.com/bawdo/typesql/expr"
	"github.com/bawdo/typesql/nodes"
	"github.com/bawdo/typesql/visitors"
)

func toSQL(t *testing.T, stmt *nodes.SelectStatement) string {
	t.Helper()
	return stmt.Accept(visitors.NewPostgresVisitor())
}

func tenantEq(table string, id int) nodes.Node {
	return nodes.NewBinary(nodes.OpEq, nodes.NewAttribute(table, "tenant_id"), nodes.Literal(id))
}

func usersJoinPosts() *nodes.SelectStatement {
	users := nodes.NewTable("users")
	posts := nodes.NewTable("posts")
	return &nodes.SelectStatement{
		From: nodes.NewJoin(nodes.InnerJoin, users, posts,
			nodes.NewBinary(nodes.OpEq, users.Col("id"), posts.Col("author_id"))),
	}
}

// --- Condition injection ---

func TestInjectsConditionsForTable(t *testing.T) {
	t.Parallel()
	stmt := &nodes.SelectStatement{From: nodes.NewTable("users")}

	p := New(func(table string) ([]nodes.Node, error) {
		if table == "users" {
			return []nodes.Node{tenantEq("users", 5)}, nil
		}
		return nil, nil
	})
	result, err := p.TransformSelect(stmt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := toSQL(t, result)
	expected := `SELECT * FROM users WHERE (users.tenant_id = 5)`
	if got != expected {
		t.Errorf("expected:\n  %s\ngot:\n  %s", expected, got)
	}
}

func TestInjectsForEveryJoinedTable(t *testing.T) {
	t.Parallel()
	p := New(func(table string) ([]nodes.Node, error) {
		return []nodes.Node{tenantEq(table, 1)}, nil
	})
	result, err := p.TransformSelect(usersJoinPosts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := toSQL(t, result)
	expected := `SELECT * FROM users INNER JOIN posts ON (users.id = posts.author_id)` +
		` WHERE ((users.tenant_id = 1) AND (posts.tenant_id = 1))`
	if got != expected {
		t.Errorf("expected:\n  %s\ngot:\n  %s", expected, got)
	}
}

// --- Rejection ---

func TestErrorRejectsQuery(t *testing.T) {
	t.Parallel()
	_, err := New(Deny("posts")).TransformSelect(usersJoinPosts())
	if !errors.Is(err, ErrDenied) {
		t.Fatalf("expected ErrDenied, got %v", err)
	}
	if got := err.Error(); got != `policy for table "posts": typesql: access denied` {
		t.Errorf("unexpected message %q", got)
	}
}

func TestDenyAllowsOtherTables(t *testing.T) {
	t.Parallel()
	stmt := &nodes.SelectStatement{From: nodes.NewTable("users")}
	result, err := New(Deny("secrets")).TransformSelect(stmt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Where != nil {
		t.Errorf("expected no conditions, got %#v", result.Where)
	}
}

// --- Helpers ---

func TestWhereAndChain(t *testing.T) {
	t.Parallel()
	active := expr.FromNode[bool, expr.NotNull, expr.NonAgg](nodes.NewAttribute("users", "active"))
	fn := Chain(
		Where("users", expr.Eq(active, expr.Bool(true))),
		func(table string) ([]nodes.Node, error) {
			return []nodes.Node{tenantEq(table, 9)}, nil
		},
	)
	result, err := New(fn).TransformSelect(usersJoinPosts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := toSQL(t, result)
	expected := `SELECT * FROM users INNER JOIN posts ON (users.id = posts.author_id)` +
		` WHERE (((users.active = TRUE) AND (users.tenant_id = 9)) AND (posts.tenant_id = 9))`
	if got != expected {
		t.Errorf("expected:\n  %s\ngot:\n  %s", expected, got)
	}
}

func TestChainStopsAtFirstError(t *testing.T) {
	t.Parallel()
	called := false
	fn := Chain(Deny("users"), func(string) ([]nodes.Node, error) {
		called = true
		return nil, nil
	})
	if _, err := fn("users"); !errors.Is(err, ErrDenied) {
		t.Fatalf("expected ErrDenied, got %v", err)
	}
	if called {
		t.Error("expected chain to stop after the error")
	}
}
