package tracker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
)

func loadedView(t *testing.T, items ...core.Expense) *ListView {
	t.Helper()
	v := NewListView()
	require.NoError(t, v.Reload(context.Background(), &memStore{items: items}))
	return v
}

func ids(rows []core.Expense) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestReloadSortsByDateTextDescending(t *testing.T) {
	v := loadedView(t,
		core.Expense{ID: 1, Date: "05-06-2024"},
		core.Expense{ID: 2, Date: "31-01-2024"},
		core.Expense{ID: 3, Date: "10-06-2024"},
	)
	// Text comparison of dd-MM-yyyy, the way the table widget sorts
	assert.Equal(t, []int64{2, 3, 1}, ids(v.Rows()))
}

func TestSortByToggles(t *testing.T) {
	v := loadedView(t,
		core.Expense{ID: 2, Date: "01-01-2024", Category: "Bills"},
		core.Expense{ID: 10, Date: "02-01-2024", Category: "Food"},
		core.Expense{ID: 9, Date: "03-01-2024", Category: "Rent"},
	)

	v.SortBy(ColID)
	assert.Equal(t, []int64{10, 9, 2}, ids(v.Rows()))
	col, desc := v.SortState()
	assert.Equal(t, ColID, col)
	assert.True(t, desc)

	v.SortBy(ColID)
	assert.Equal(t, []int64{2, 9, 10}, ids(v.Rows()))

	v.SortBy(ColCategory)
	assert.Equal(t, []int64{9, 10, 2}, ids(v.Rows()))

	v.SortBy(-1)
	assert.Equal(t, []int64{9, 10, 2}, ids(v.Rows()))
}

func TestSelectionFollowsRowOnSort(t *testing.T) {
	v := loadedView(t,
		core.Expense{ID: 1, Date: "01-01-2024", Description: "a"},
		core.Expense{ID: 2, Date: "02-01-2024", Description: "b"},
	)
	v.Select(0, ColDescription)
	cell, ok := v.SelectedCell()
	require.True(t, ok)
	assert.Equal(t, "b", cell)

	v.SortBy(ColDate) // now ascending
	assert.Equal(t, Selection{Row: 1, Col: ColDescription}, v.Selection())
	cell, _ = v.SelectedCell()
	assert.Equal(t, "b", cell)
}

func TestSelectOutOfRangeClears(t *testing.T) {
	v := loadedView(t, core.Expense{ID: 1})
	v.Select(0, 0)
	require.True(t, v.Selection().Valid())

	v.Select(1, 0)
	assert.False(t, v.Selection().Valid())
	v.Select(0, 5)
	assert.False(t, v.Selection().Valid())

	_, ok := v.SelectedRow()
	assert.False(t, ok)
}

func TestReloadClearsSelection(t *testing.T) {
	store := &memStore{items: []core.Expense{{ID: 1}}}
	v := NewListView()
	require.NoError(t, v.Reload(context.Background(), store))
	v.Select(0, 0)

	require.NoError(t, v.Reload(context.Background(), store))
	assert.Equal(t, NoSelection, v.Selection())
	assert.Equal(t, 1, v.Len())
}
