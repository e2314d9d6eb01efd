package plugins

import (
	"testing"

	"github.com/bawdo/typesql/nodes"
)

func TestCollectTablesFromTable(t *testing.T) {
	stmt := &nodes.SelectStatement{From: nodes.NewTable("users")}

	names := CollectTables(stmt)
	if len(names) != 1 || names[0] != "users" {
		t.Errorf("expected [users], got %v", names)
	}
}

func TestCollectTablesIncludesJoins(t *testing.T) {
	users := nodes.NewTable("users")
	posts := nodes.NewTable("posts")
	comments := nodes.NewTable("comments")
	on := nodes.Literal(true)
	stmt := &nodes.SelectStatement{
		From: nodes.NewJoin(nodes.LeftJoin,
			nodes.NewJoin(nodes.InnerJoin, users, posts, on), comments, on),
	}

	names := CollectTables(stmt)
	if len(names) != 3 {
		t.Fatalf("expected 3 names, got %d", len(names))
	}
	if names[0] != "users" || names[1] != "posts" || names[2] != "comments" {
		t.Errorf("unexpected names: %v", names)
	}
}

func TestCollectTablesWithoutFrom(t *testing.T) {
	if got := CollectTables(&nodes.SelectStatement{}); len(got) != 0 {
		t.Errorf("expected no tables, got %v", got)
	}
}
