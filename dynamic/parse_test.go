package dynamic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bawdo/typesql/nodes"
	"github.com/bawdo/typesql/visitors"
)

func usersScope(t *testing.T) *Scope {
	t.Helper()
	b, err := New(blogCatalog(t)).From("users")
	require.NoError(t, err)
	b, err = b.Join(nodes.LeftJoin, "posts", parsed("posts.author_id = users.id"))
	require.NoError(t, err)
	return b.Scope()
}

func TestParseExprRendering(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{"users.id = 1", "(users.id = 1)"},
		{"users.id <> -5", "(users.id <> -5)"},
		{"users.id != $2", "(users.id <> $2)"},
		{"users.name >= 'it''s'", "(users.name >= 'it''s')"},
		{"users.id = 1 AND users.name = 'a' OR users.id = 2", "(((users.id = 1) AND (users.name = 'a')) OR (users.id = 2))"},
		{"users.id = 1 and (users.name = 'a' or users.id = 2)", "((users.id = 1) AND ((users.name = 'a') OR (users.id = 2)))"},
		{"NOT users.id = 1", "(NOT (users.id = 1))"},
		{"not not TRUE", "(NOT (NOT TRUE))"},
		{"users.deleted_at IS NULL", "(users.deleted_at IS NULL)"},
		{"posts.title is not null", "(posts.title IS NOT NULL)"},
		{"(posts.published = true) = FALSE", "((posts.published = TRUE) = FALSE)"},
		{"$1", "$1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			e, err := ParseExpr(usersScope(t), tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.Node.Accept(visitors.NewPostgresVisitor()))
		})
	}
}

func TestParseExprTypes(t *testing.T) {
	t.Parallel()
	s := usersScope(t)

	e, err := ParseExpr(s, "posts.title")
	require.NoError(t, err)
	assert.Equal(t, Text, e.Type)
	assert.True(t, e.Nullable)

	e, err = ParseExpr(s, "users.id")
	require.NoError(t, err)
	assert.Equal(t, Int, e.Type)
	assert.False(t, e.Nullable)
}

func TestParseExprErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want error
	}{
		{"", ErrSyntax},
		{"users.id =", ErrSyntax},
		{"users.id = 1)", ErrSyntax},
		{"(users.id = 1", ErrSyntax},
		{"users", ErrSyntax},
		{"users.", ErrSyntax},
		{"users.id = 'open", ErrSyntax},
		{"users.id = $0", ErrSyntax},
		{"users.id = $", ErrSyntax},
		{"users.id ! 1", ErrSyntax},
		{"users.id IS 1", ErrSyntax},
		{"users.id = 1 ; DROP", ErrSyntax},
		{"users.nämé = 1", ErrSyntax},
		{"üsers.id = 1", ErrSyntax},
		{"users.id = '\xff'", ErrSyntax},
		{"users.id = 'x'", ErrTypeMismatch},
		{"users.id IS NULL", ErrNotNullable},
		{"users.id AND TRUE", ErrNotBoolean},
		{"comments.id = 1", ErrUnknownTable},
		{"users.missing = 1", ErrUnknownColumn},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			_, err := ParseExpr(usersScope(t), tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseExprUnicodeInStrings(t *testing.T) {
	t.Parallel()
	e, err := ParseExpr(usersScope(t), "users.name = 'Zoë'")
	require.NoError(t, err)
	assert.Equal(t, "(users.name = 'Zoë')", e.Node.Accept(visitors.NewPostgresVisitor()))

	_, err = ParseExpr(usersScope(t), "users.name = 'Zoë' AND ö")
	assert.EqualError(t, err, `syntax error at 24: unexpected 'ö'`)
}

func TestParseList(t *testing.T) {
	t.Parallel()
	es, err := ParseList(usersScope(t), "users.id, posts.title , 'x'")
	require.NoError(t, err)
	require.Len(t, es, 3)
	assert.Equal(t, Text, es[2].Type)

	_, err = ParseList(usersScope(t), "users.id,")
	assert.ErrorIs(t, err, ErrSyntax)
}
