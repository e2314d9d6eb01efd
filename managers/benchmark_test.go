package managers

import (
	"testing"

	"github.com/bawdo/typesql/examples/blog"
	"github.com/bawdo/typesql/expr"
	"github.com/bawdo/typesql/visitors"
)

func BenchmarkBuildAndRender(b *testing.B) {
	for b.Loop() {
		q := Select2(usersLeftPosts().Filter(func(j usersPosts) expr.Predicate {
			return expr.Eq(j.L.ID.Expr(), expr.Param[int64](0))
		}), func(j usersPosts) (expr.Value[string], expr.NullableValue[string]) {
			return j.L.Name.Expr(), j.R.Title.Expr()
		})
		_ = q.SQL()
	}
}

func BenchmarkRenderOnly(b *testing.B) {
	q := Select1(From(blog.Users{}).Filter(func(u blog.UsersProxy) expr.Predicate {
		return expr.All(
			expr.Gt(u.ID.Expr(), expr.Int(10)),
			expr.Eq(u.Name.Expr(), expr.Str("alice")),
			expr.IsNull(u.DeletedAt.Expr()),
		)
	}), userID)
	v := visitors.NewSQLiteVisitor()
	for b.Loop() {
		_, _ = q.ToSQL(v)
	}
}
