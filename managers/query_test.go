package managers

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bawdo/typesql/examples/blog"
	"github.com/bawdo/typesql/expr"
	"github.com/bawdo/typesql/internal/testutil"
	"github.com/bawdo/typesql/nodes"
	"github.com/bawdo/typesql/plugins"
	"github.com/bawdo/typesql/plugins/policy"
	"github.com/bawdo/typesql/plugins/softdelete"
	"github.com/bawdo/typesql/schema"
	"github.com/bawdo/typesql/visitors"
)

type (
	usersPosts         = schema.JoinProxy[blog.UsersProxy, blog.PostsNullableProxy]
	usersPostsNullable = schema.JoinProxy[blog.UsersNullableProxy, blog.PostsNullableProxy]
)

func userID(u blog.UsersProxy) expr.Value[int64] { return u.ID.Expr() }

func authoredBy(u blog.UsersProxy, p blog.PostsProxy) expr.Predicate {
	return expr.Eq(p.AuthorID.Expr(), u.ID.Expr())
}

// usersLeftPosts is users LEFT JOIN posts ON posts.author_id = users.id.
func usersLeftPosts() FromBuilder[usersPosts, usersPostsNullable] {
	return LeftJoin(From(blog.Users{}), blog.Posts{}, authoredBy)
}

// --- From / Select ---

func TestSelectSingleColumn(t *testing.T) {
	t.Parallel()
	q := Select1(From(blog.Users{}), userID)
	testutil.AssertEqual(t, q.SQL(), "SELECT users.id FROM users")
}

func TestSelectColumnsInCallbackOrder(t *testing.T) {
	t.Parallel()
	q := Select4(From(blog.Users{}), func(u blog.UsersProxy) (expr.Value[string], expr.Value[int64], expr.NullableValue[time.Time], expr.Value[string]) {
		return u.Email.Expr(), u.ID.Expr(), u.DeletedAt.Expr(), u.Name.Expr()
	})
	testutil.AssertEqual(t, q.SQL(), "SELECT users.email, users.id, users.deleted_at, users.name FROM users")
}

func TestSelectLiteralsAndParams(t *testing.T) {
	t.Parallel()
	q := Select3(From(blog.Users{}), func(u blog.UsersProxy) (expr.Value[string], expr.Value[int64], expr.Value[bool]) {
		return expr.Str("O'Brien"), expr.Param[int64](1), expr.Bool(true)
	})
	testutil.AssertEqual(t, q.SQL(), "SELECT 'O''Brien', $2, TRUE FROM users")
}

func TestSQLIsIdempotent(t *testing.T) {
	t.Parallel()
	q := Select1(From(blog.Users{}).Filter(func(u blog.UsersProxy) expr.Predicate {
		return expr.Eq(u.ID.Expr(), expr.Param[int64](0))
	}), userID)

	first := q.SQL()
	testutil.AssertEqual(t, q.SQL(), first)
	testutil.AssertEqual(t, first, "SELECT users.id FROM users WHERE (users.id = $1)")
}

// --- Filter ---

func TestFilterSingle(t *testing.T) {
	t.Parallel()
	b := From(blog.Users{}).Filter(func(u blog.UsersProxy) expr.Predicate {
		return expr.Eq(u.Name.Expr(), expr.Str("alice"))
	})
	testutil.AssertEqual(t, Select1(b, userID).SQL(), "SELECT users.id FROM users WHERE (users.name = 'alice')")
}

func TestFilterTwiceEqualsAnd(t *testing.T) {
	t.Parallel()
	named := func(u blog.UsersProxy) expr.Predicate { return expr.Eq(u.Name.Expr(), expr.Str("alice")) }
	recent := func(u blog.UsersProxy) expr.Predicate { return expr.Gt(u.ID.Expr(), expr.Int(10)) }

	chained := Select1(From(blog.Users{}).Filter(named).Filter(recent), userID)
	combined := Select1(From(blog.Users{}).Filter(func(u blog.UsersProxy) expr.Predicate {
		return expr.And(named(u), recent(u))
	}), userID)

	want := "SELECT users.id FROM users WHERE ((users.name = 'alice') AND (users.id > 10))"
	testutil.AssertEqual(t, chained.SQL(), want)
	testutil.AssertEqual(t, combined.SQL(), want)
}

func TestFilterDoesNotModifyReceiver(t *testing.T) {
	t.Parallel()
	base := From(blog.Users{})
	_ = base.Filter(func(u blog.UsersProxy) expr.Predicate { return expr.Eq(u.ID.Expr(), expr.Int(1)) })

	testutil.AssertEqual(t, Select1(base, userID).SQL(), "SELECT users.id FROM users")
	if base.Where() != nil {
		t.Error("expected base builder to keep a nil filter")
	}
}

func TestFilterOnNullableColumn(t *testing.T) {
	t.Parallel()
	b := From(blog.Users{}).Filter(func(u blog.UsersProxy) expr.Predicate {
		return expr.IsNull(u.DeletedAt.Expr())
	})
	testutil.AssertEqual(t, Select1(b, userID).SQL(), "SELECT users.id FROM users WHERE (users.deleted_at IS NULL)")
}

// --- Joins ---

func TestLeftJoinTyping(t *testing.T) {
	t.Parallel()
	q := Select2(usersLeftPosts(), func(j usersPosts) (expr.Value[string], expr.NullableValue[string]) {
		return j.L.Name.Expr(), j.R.Title.Expr()
	})

	var _ *Query[Row2[Cell[string, expr.NotNull], Cell[string, expr.Nullable]]] = q
	testutil.AssertEqual(t, q.SQL(),
		"SELECT users.name, posts.title FROM users LEFT JOIN posts ON (posts.author_id = users.id)")
}

func TestChainedLeftJoins(t *testing.T) {
	t.Parallel()
	b := LeftJoin(usersLeftPosts(), blog.Comments{}, func(j usersPosts, c blog.CommentsProxy) expr.Predicate {
		return expr.Eq(c.PostID.Expr(), j.R.ID.Expr())
	})

	var _ FromBuilder[
		schema.JoinProxy[usersPosts, blog.CommentsNullableProxy],
		schema.JoinProxy[usersPostsNullable, blog.CommentsNullableProxy],
	] = b

	q := Select3(b, func(j schema.JoinProxy[usersPosts, blog.CommentsNullableProxy]) (expr.Value[string], expr.NullableValue[string], expr.NullableValue[string]) {
		return j.L.L.Name.Expr(), j.L.R.Title.Expr(), j.R.Body.Expr()
	})
	testutil.AssertEqual(t, q.SQL(), "SELECT users.name, posts.title, comments.body FROM users"+
		" LEFT JOIN posts ON (posts.author_id = users.id)"+
		" LEFT JOIN comments ON (comments.post_id = posts.id)")
}

func TestInnerJoinKeepsNullability(t *testing.T) {
	t.Parallel()
	b := InnerJoin(From(blog.Users{}), blog.Posts{}, authoredBy)

	q := Select2(b, func(j schema.JoinProxy[blog.UsersProxy, blog.PostsProxy]) (expr.Value[string], expr.Value[string]) {
		return j.L.Name.Expr(), j.R.Title.Expr()
	})
	testutil.AssertEqual(t, q.SQL(),
		"SELECT users.name, posts.title FROM users INNER JOIN posts ON (posts.author_id = users.id)")
}

func TestRightJoinMakesLeftNullable(t *testing.T) {
	t.Parallel()
	b := RightJoin(From(blog.Users{}), blog.Posts{}, authoredBy)

	q := Select2(b, func(j schema.JoinProxy[blog.UsersNullableProxy, blog.PostsProxy]) (expr.NullableValue[string], expr.Value[string]) {
		return j.L.Name.Expr(), j.R.Title.Expr()
	})
	testutil.AssertEqual(t, q.SQL(),
		"SELECT users.name, posts.title FROM users RIGHT JOIN posts ON (posts.author_id = users.id)")
}

func TestFullJoinMakesBothNullable(t *testing.T) {
	t.Parallel()
	b := FullJoin(From(blog.Users{}), blog.Posts{}, authoredBy)

	q := Select2(b, func(j usersPostsNullable) (expr.NullableValue[int64], expr.NullableValue[int64]) {
		return j.L.ID.Expr(), j.R.ID.Expr()
	})
	testutil.AssertEqual(t, q.SQL(),
		"SELECT users.id, posts.id FROM users FULL JOIN posts ON (posts.author_id = users.id)")
}

func TestRightJoinAfterLeftJoinWidensEverythingBefore(t *testing.T) {
	t.Parallel()
	b := RightJoin(usersLeftPosts(), blog.Comments{}, func(j usersPosts, c blog.CommentsProxy) expr.Predicate {
		return expr.Eq(c.PostID.Expr(), j.R.ID.Expr())
	})

	var _ FromBuilder[
		schema.JoinProxy[usersPostsNullable, blog.CommentsProxy],
		schema.JoinProxy[usersPostsNullable, blog.CommentsNullableProxy],
	] = b
}

func TestJoinKeepsEarlierFilter(t *testing.T) {
	t.Parallel()
	filtered := From(blog.Users{}).Filter(func(u blog.UsersProxy) expr.Predicate {
		return expr.Eq(u.Name.Expr(), expr.Str("alice"))
	})
	b := LeftJoin(filtered, blog.Posts{}, authoredBy).Filter(func(j usersPosts) expr.Predicate {
		return expr.IsNotNull(j.R.Title.Expr())
	})

	q := Select1(b, func(j usersPosts) expr.Value[int64] { return j.L.ID.Expr() })
	testutil.AssertEqual(t, q.SQL(), "SELECT users.id FROM users LEFT JOIN posts ON (posts.author_id = users.id)"+
		" WHERE ((users.name = 'alice') AND (posts.title IS NOT NULL))")
}

func TestJoinOnCallbackRunsOnce(t *testing.T) {
	t.Parallel()
	calls := 0
	b := LeftJoin(From(blog.Users{}), blog.Posts{}, func(u blog.UsersProxy, p blog.PostsProxy) expr.Predicate {
		calls++
		return authoredBy(u, p)
	})
	q := Select1(b, func(j usersPosts) expr.Value[int64] { return j.L.ID.Expr() })
	_ = q.SQL()
	_ = q.SQL()
	testutil.AssertEqual(t, calls, 1)
}

// --- Rendering ---

func TestToSQLDialects(t *testing.T) {
	t.Parallel()
	q := Select1(From(blog.Users{}).Filter(func(u blog.UsersProxy) expr.Predicate {
		return expr.Or(
			expr.Eq(u.Name.Expr(), expr.Param[string](1)),
			expr.Eq(u.Email.Expr(), expr.Param[string](1)),
		)
	}), userID)

	tests := []struct {
		name   string
		v      nodes.Visitor
		want   string
		params []int
	}{
		{"postgres", visitors.NewPostgresVisitor(), "SELECT users.id FROM users WHERE ((users.name = $2) OR (users.email = $2))", []int{1, 1}},
		{"sqlite", visitors.NewSQLiteVisitor(), "SELECT users.id FROM users WHERE ((users.name = ?2) OR (users.email = ?2))", []int{1, 1}},
		{"mysql", visitors.NewMySQLVisitor(visitors.WithQuotedIdentifiers()),
			"SELECT `users`.`id` FROM `users` WHERE ((`users`.`name` = ?) OR (`users`.`email` = ?))", []int{1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sql, params := q.ToSQL(tt.v)
			testutil.AssertEqual(t, sql, tt.want)
			testutil.AssertEqual(t, len(params), len(tt.params))
			for i := range params {
				testutil.AssertEqual(t, params[i], tt.params[i])
			}
		})
	}
}

func TestToSQLResetsVisitorBetweenCalls(t *testing.T) {
	t.Parallel()
	q := Select1(From(blog.Users{}), func(u blog.UsersProxy) expr.Value[int64] { return expr.Param[int64](0) })
	v := visitors.NewMySQLVisitor()
	_, _ = q.ToSQL(v)
	_, params := q.ToSQL(v)
	testutil.AssertEqual(t, len(params), 1)
}

func TestFormattedQuery(t *testing.T) {
	t.Parallel()
	q := Select2(usersLeftPosts().Filter(func(j usersPosts) expr.Predicate {
		return expr.All(expr.Gt(j.L.ID.Expr(), expr.Int(1)), expr.IsNull(j.L.DeletedAt.Expr()))
	}), func(j usersPosts) (expr.Value[string], expr.NullableValue[string]) {
		return j.L.Name.Expr(), j.R.Title.Expr()
	})

	sql, _ := q.ToSQL(visitors.NewFormattingVisitor(visitors.NewPostgresVisitor()))
	want := "SELECT users.name\n\t,posts.title\nFROM users" +
		"\n\tLEFT JOIN posts ON (posts.author_id = users.id)" +
		"\nWHERE (users.id > 1)\n\tAND (users.deleted_at IS NULL)"
	testutil.AssertEqual(t, sql, want)
}

// --- Statement / Transform ---

func TestStatementReturnsCopy(t *testing.T) {
	t.Parallel()
	q := Select1(From(blog.Users{}), userID)
	stmt := q.Statement()
	stmt.Projections[0] = nodes.Literal(1)
	stmt.Where = nodes.Literal(true)

	testutil.AssertEqual(t, q.SQL(), "SELECT users.id FROM users")
}

func TestTransformSoftDelete(t *testing.T) {
	t.Parallel()
	q := Select1(From(blog.Users{}).Filter(func(u blog.UsersProxy) expr.Predicate {
		return expr.Gt(u.ID.Expr(), expr.Int(10))
	}), userID)

	out, err := q.Transform(softdelete.New(softdelete.WithTables("users")))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, out.SQL(), "SELECT users.id FROM users WHERE ((users.id > 10) AND (users.deleted_at IS NULL))")
	testutil.AssertEqual(t, q.SQL(), "SELECT users.id FROM users WHERE (users.id > 10)")
}

func TestTransformPipelineOrder(t *testing.T) {
	t.Parallel()
	q := Select1(usersLeftPosts(), func(j usersPosts) expr.Value[int64] { return j.L.ID.Expr() })

	published := policy.Where("posts", expr.FromNode[bool, expr.NotNull, expr.NonAgg](
		nodes.NewBinary(nodes.OpEq, nodes.NewAttribute("posts", "published"), nodes.Literal(true))))
	out, err := q.Transform(softdelete.New(softdelete.WithTables("users")), policy.New(published))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, out.SQL(), "SELECT users.id FROM users LEFT JOIN posts ON (posts.author_id = users.id)"+
		" WHERE ((users.deleted_at IS NULL) AND (posts.published = TRUE))")
}

func TestTransformPolicyDenied(t *testing.T) {
	t.Parallel()
	q := Select1(usersLeftPosts(), func(j usersPosts) expr.Value[int64] { return j.L.ID.Expr() })

	out, err := q.Transform(policy.New(policy.Deny("posts")))
	testutil.AssertError(t, err)
	if out != nil {
		t.Error("expected nil query on error")
	}
	if !errors.Is(err, policy.ErrDenied) {
		t.Errorf("expected ErrDenied, got %v", err)
	}
	if !strings.Contains(err.Error(), `transform: transformer 0: policy for table "posts"`) {
		t.Errorf("unexpected error text: %v", err)
	}
}

func TestTransformRejectsNilStatement(t *testing.T) {
	t.Parallel()
	q := Select1(From(blog.Users{}), userID)
	_, err := q.Transform(plugins.TransformerFunc(func(*nodes.SelectStatement) (*nodes.SelectStatement, error) {
		return nil, nil
	}))
	testutil.AssertError(t, err)
}

func TestTransformKeepsRowShape(t *testing.T) {
	t.Parallel()
	q := Select2(usersLeftPosts(), func(j usersPosts) (expr.Value[string], expr.NullableValue[string]) {
		return j.L.Name.Expr(), j.R.Title.Expr()
	})
	out, err := q.Transform()
	testutil.AssertNoError(t, err)

	var _ *Query[Row2[Cell[string, expr.NotNull], Cell[string, expr.Nullable]]] = out
	testutil.AssertEqual(t, out.SQL(), q.SQL())
}
