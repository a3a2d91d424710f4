package engine

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/csvx/internal/dataset"
)

func loadedEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	d := dataset.Parse("name,age,city\nalice,30,berlin\nbob,25,oslo\ncarol,41,berlin\ndave,25,lima")
	e := New(opts...)
	e.Load(d.Headers, d.Rows)
	return e
}

func visibleColumn(v View, col string) []string {
	out := make([]string, len(v.VisibleRows))
	for i, r := range v.VisibleRows {
		out[i] = r[col]
	}
	return out
}

func TestLoadInitializesCanonicalState(t *testing.T) {
	e := loadedEngine(t)
	v := e.CurrentView()
	assert.Equal(t, 4, v.TotalCount)
	assert.Equal(t, 4, v.FilteredCount)
	assert.Equal(t, []string{"alice", "bob", "carol", "dave"}, visibleColumn(v, "name"))
	assert.Equal(t, []string{"name", "age", "city"}, e.Headers())
}

func TestSearchFiltersAnyField(t *testing.T) {
	e := loadedEngine(t)

	e.SetSearchTerm("berlin")
	v := e.CurrentView()
	assert.Equal(t, 2, v.FilteredCount)
	assert.Equal(t, []string{"alice", "carol"}, visibleColumn(v, "name"))

	// Case-insensitive, matches values in any column.
	e.SetSearchTerm("BOB")
	assert.Equal(t, 1, e.CurrentView().FilteredCount)

	e.SetSearchTerm("25")
	assert.Equal(t, 2, e.CurrentView().FilteredCount)
}

func TestSearchCountNeverExceedsTotal(t *testing.T) {
	e := loadedEngine(t)
	for _, term := range []string{"", "a", "berlin", "zzz", "2"} {
		e.SetSearchTerm(term)
		v := e.CurrentView()
		assert.LessOrEqual(t, v.FilteredCount, v.TotalCount, "term %q", term)
	}
	e.SetSearchTerm("")
	v := e.CurrentView()
	assert.Equal(t, v.TotalCount, v.FilteredCount)
}

func TestSortNumericWhenBothValuesNumeric(t *testing.T) {
	d := dataset.Parse("n\n10\n2\n1")
	e := New()
	e.Load(d.Headers, d.Rows)

	e.SetSort(&SortSpec{Column: "n", Direction: Ascending})
	assert.Equal(t, []string{"1", "2", "10"}, visibleColumn(e.CurrentView(), "n"))

	e.SetSort(&SortSpec{Column: "n", Direction: Descending})
	assert.Equal(t, []string{"10", "2", "1"}, visibleColumn(e.CurrentView(), "n"))
}

func TestSortLexicographicWhenNotNumeric(t *testing.T) {
	d := dataset.Parse("n\n10\nbeta\n2")
	e := New()
	e.Load(d.Headers, d.Rows)
	e.SetSort(&SortSpec{Column: "n", Direction: Ascending})
	// Numeric pairs compare numerically, mixed pairs fall back to strings.
	assert.Equal(t, []string{"2", "10", "beta"}, visibleColumn(e.CurrentView(), "n"))
}

func TestSortDescendingReversesAscending(t *testing.T) {
	e := loadedEngine(t)
	e.SetSort(&SortSpec{Column: "name", Direction: Ascending})
	asc := visibleColumn(e.CurrentView(), "name")

	e.SetSort(&SortSpec{Column: "name", Direction: Descending})
	desc := visibleColumn(e.CurrentView(), "name")

	require.Equal(t, len(asc), len(desc))
	for i := range asc {
		assert.Equal(t, asc[i], desc[len(desc)-1-i])
	}
}

func TestSortClearPreservesCanonicalOrder(t *testing.T) {
	e := loadedEngine(t)
	e.SetSort(&SortSpec{Column: "age", Direction: Ascending})
	e.SetSort(nil)
	assert.Equal(t, []string{"alice", "bob", "carol", "dave"}, visibleColumn(e.CurrentView(), "name"))
}

func TestSortIsStableOnTies(t *testing.T) {
	e := loadedEngine(t)
	e.SetSort(&SortSpec{Column: "age", Direction: Ascending})
	// bob and dave tie on 25 and keep canonical relative order.
	assert.Equal(t, []string{"bob", "dave", "alice", "carol"}, visibleColumn(e.CurrentView(), "name"))
}

func TestEditReplacesExactlyOneRow(t *testing.T) {
	e := loadedEngine(t)
	before := e.CurrentView().TotalCount

	ok := e.EditRow(1, dataset.Row{"name": "bobby", "age": "26", "city": "oslo"})
	require.True(t, ok)

	v := e.CurrentView()
	assert.Equal(t, before, v.TotalCount)
	assert.Equal(t, []string{"alice", "bobby", "carol", "dave"}, visibleColumn(v, "name"))
}

func TestEditTargetsCorrectRowThroughSortedView(t *testing.T) {
	e := loadedEngine(t)
	e.SetSort(&SortSpec{Column: "age", Direction: Descending})
	// View order: carol(41), alice(30), bob(25), dave(25).
	ok := e.EditRow(0, dataset.Row{"name": "carla", "age": "41", "city": "berlin"})
	require.True(t, ok)

	e.SetSort(nil)
	assert.Equal(t, []string{"alice", "bob", "carla", "dave"}, visibleColumn(e.CurrentView(), "name"))
}

func TestEditNormalizesToHeaderSet(t *testing.T) {
	e := loadedEngine(t)
	require.True(t, e.EditRow(0, dataset.Row{"name": "al", "bogus": "x"}))

	row := e.CurrentView().VisibleRows[0]
	assert.Equal(t, "al", row["name"])
	assert.Equal(t, "", row["age"])
	_, hasBogus := row["bogus"]
	assert.False(t, hasBogus)
}

func TestDeleteShiftsCanonicalPositions(t *testing.T) {
	e := loadedEngine(t)
	require.True(t, e.DeleteRow(1)) // bob

	v := e.CurrentView()
	assert.Equal(t, 3, v.TotalCount)
	assert.Equal(t, []string{"alice", "carol", "dave"}, visibleColumn(v, "name"))

	// Subsequent mutations hit the shifted rows correctly.
	require.True(t, e.DeleteRow(1)) // carol
	assert.Equal(t, []string{"alice", "dave"}, visibleColumn(e.CurrentView(), "name"))
}

func TestDeleteSameIDTwiceIsNoOp(t *testing.T) {
	e := loadedEngine(t)
	id := e.CurrentView().VisibleIDs[2]

	assert.True(t, e.DeleteRowID(id))
	assert.False(t, e.DeleteRowID(id))
	assert.Equal(t, 3, e.CurrentView().TotalCount)
}

func TestDeleteThroughFilteredView(t *testing.T) {
	e := loadedEngine(t)
	e.SetSearchTerm("berlin")
	require.True(t, e.DeleteRow(0)) // alice

	e.SetSearchTerm("")
	assert.Equal(t, []string{"bob", "carol", "dave"}, visibleColumn(e.CurrentView(), "name"))
}

func TestMutationOutOfRangeIsNoOp(t *testing.T) {
	e := loadedEngine(t)
	assert.False(t, e.DeleteRow(99))
	assert.False(t, e.DeleteRow(-1))
	assert.False(t, e.EditRow(99, dataset.Row{}))
	assert.False(t, e.EditRowID(12345, dataset.Row{}))
	assert.Equal(t, 4, e.CurrentView().TotalCount)
}

func TestLoadResetsAllViewState(t *testing.T) {
	e := loadedEngine(t)
	e.SetSearchTerm("berlin")
	e.SetSort(&SortSpec{Column: "name", Direction: Descending})
	e.SetPredicate(func(r dataset.Row) bool { return r["age"] != "25" })
	e.RequestPage(2)

	d := dataset.Parse("x,y\n1,2")
	e.Load(d.Headers, d.Rows)

	v := e.CurrentView()
	assert.Empty(t, e.SearchTerm())
	assert.Nil(t, v.Sort)
	assert.Equal(t, 1, v.Window.Page)
	assert.Equal(t, 1, v.TotalCount)
	assert.Equal(t, 1, v.FilteredCount)
}

func TestPredicateComposesWithSearch(t *testing.T) {
	e := loadedEngine(t)
	e.SetPredicate(func(r dataset.Row) bool { return r["city"] == "berlin" })
	assert.Equal(t, 2, e.CurrentView().FilteredCount)

	e.SetSearchTerm("carol")
	assert.Equal(t, 1, e.CurrentView().FilteredCount)
}

func TestStableIdentitySurvivesResort(t *testing.T) {
	e := loadedEngine(t)
	e.SetSort(&SortSpec{Column: "name", Direction: Descending})
	id := e.CurrentView().VisibleIDs[0] // dave

	e.SetSort(&SortSpec{Column: "age", Direction: Ascending})
	require.True(t, e.EditRowID(id, dataset.Row{"name": "dave", "age": "99", "city": "lima"}))

	e.SetSort(nil)
	assert.Equal(t, "99", e.CurrentView().VisibleRows[3]["age"])
}

func TestEndToEndLoadDeleteEdit(t *testing.T) {
	d := dataset.Parse("a,b\n1,2\n3,4")
	require.Equal(t, []string{"a", "b"}, d.Headers)

	e := New()
	e.Load(d.Headers, d.Rows)
	require.True(t, e.DeleteRow(0))

	v := e.CurrentView()
	require.Len(t, v.VisibleRows, 1)
	assert.Equal(t, dataset.Row{"a": "3", "b": "4"}, v.VisibleRows[0])

	require.True(t, e.EditRow(0, dataset.Row{"a": "9", "b": "9"}))
	assert.Equal(t, dataset.Row{"a": "9", "b": "9"}, e.CurrentView().VisibleRows[0])
}

func TestLargeDatasetFilterSortInteraction(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("id,group\n")
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&sb, "%d,g%d\n", i, i%3)
	}
	d := dataset.Parse(sb.String())
	e := New(WithPageSize(10))
	e.Load(d.Headers, d.Rows)

	e.SetSearchTerm("g1")
	e.SetSort(&SortSpec{Column: "id", Direction: Descending})
	v := e.CurrentView()
	assert.Equal(t, 67, v.FilteredCount)
	assert.Equal(t, "199", v.VisibleRows[0]["id"])
	assert.Len(t, v.VisibleRows, 10)
}
