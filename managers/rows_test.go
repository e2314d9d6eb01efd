package managers

import (
	"errors"
	"testing"

	"github.com/bawdo/typesql/expr"
	"github.com/bawdo/typesql/internal/testutil"
	"github.com/bawdo/typesql/plugins/softdelete"
)

func softdeleteUsers() *softdelete.SoftDelete {
	return softdelete.New(softdelete.WithTables("users"))
}

func TestCellOf(t *testing.T) {
	t.Parallel()
	c := CellOf[int64, expr.NotNull](5)
	v, ok := c.Get()
	testutil.AssertEqual(t, v, int64(5))
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, c.String(), "5")
}

func TestNullCell(t *testing.T) {
	t.Parallel()
	c := NullCell[string]()
	testutil.AssertEqual(t, c.Valid(), false)
	testutil.AssertEqual(t, c.Value(), "")
	testutil.AssertEqual(t, c.String(), "NULL")
}

func TestCellScan(t *testing.T) {
	t.Parallel()

	var notNull Cell[int64, expr.NotNull]
	testutil.AssertNoError(t, notNull.Scan(int64(3)))
	testutil.AssertEqual(t, notNull.Value(), int64(3))

	err := notNull.Scan(nil)
	if !errors.Is(err, ErrUnexpectedNull) {
		t.Errorf("expected ErrUnexpectedNull, got %v", err)
	}

	var nullable Cell[string, expr.Nullable]
	testutil.AssertNoError(t, nullable.Scan("x"))
	testutil.AssertEqual(t, nullable.Value(), "x")
	testutil.AssertNoError(t, nullable.Scan(nil))
	testutil.AssertEqual(t, nullable.Valid(), false)
}

func TestCellScanConverts(t *testing.T) {
	t.Parallel()
	var b Cell[bool, expr.NotNull]
	testutil.AssertNoError(t, b.Scan(int64(1)))
	testutil.AssertEqual(t, b.Value(), true)

	var s Cell[string, expr.NotNull]
	testutil.AssertNoError(t, s.Scan([]byte("bytes")))
	testutil.AssertEqual(t, s.Value(), "bytes")
}
