package tracker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"expensetracker/internal/core"
)

// Columns are the table headers in display order.
var Columns = []string{"ID", "Date", "Category", "Amount", "Description"}

const (
	ColID = iota
	ColDate
	ColCategory
	ColAmount
	ColDescription
)

// Selection is the current cell of the table. Row indexes the displayed
// (sorted) rows, not the store.
type Selection struct {
	Row int
	Col int
}

// NoSelection is the empty selection.
var NoSelection = Selection{Row: -1, Col: -1}

// Valid reports whether s points at a cell.
func (s Selection) Valid() bool {
	return s.Row >= 0 && s.Col >= 0
}

// ListView is the read projection of the store shown as a table.
type ListView struct {
	rows      []core.Expense
	selection Selection
	sortCol   int
	sortDesc  bool
}

// NewListView returns an empty view sorted by date, newest text first.
func NewListView() *ListView {
	return &ListView{
		selection: NoSelection,
		sortCol:   ColDate,
		sortDesc:  true,
	}
}

// Reload clears all rows and repopulates them from the store.
func (v *ListView) Reload(ctx context.Context, store Store) error {
	v.rows = v.rows[:0]
	v.selection = NoSelection

	all, err := store.SelectAll(ctx)
	if err != nil {
		return fmt.Errorf("reload view: %w", err)
	}
	v.rows = append(v.rows, all...)
	v.sort()
	return nil
}

// Rows returns a copy of the displayed rows in display order.
func (v *ListView) Rows() []core.Expense {
	out := make([]core.Expense, len(v.rows))
	copy(out, v.rows)
	return out
}

// Len returns the number of displayed rows.
func (v *ListView) Len() int {
	return len(v.rows)
}

// Selection returns the current cell.
func (v *ListView) Selection() Selection {
	return v.selection
}

// Select sets the current cell. Coordinates outside the table clear it.
func (v *ListView) Select(row, col int) {
	if row < 0 || row >= len(v.rows) || col < 0 || col >= len(Columns) {
		v.selection = NoSelection
		return
	}
	v.selection = Selection{Row: row, Col: col}
}

// SelectedRow returns the expense under the current selection.
func (v *ListView) SelectedRow() (core.Expense, bool) {
	if !v.selection.Valid() || v.selection.Row >= len(v.rows) {
		return core.Expense{}, false
	}
	return v.rows[v.selection.Row], true
}

// SelectedCell returns the text of the current cell.
func (v *ListView) SelectedCell() (string, bool) {
	row, ok := v.SelectedRow()
	if !ok {
		return "", false
	}
	return row.Field(v.selection.Col)
}

// SortBy sorts by col. Sorting by the current column flips the order;
// a new column starts descending. The selection follows its row.
func (v *ListView) SortBy(col int) {
	if col < 0 || col >= len(Columns) {
		return
	}
	if col == v.sortCol {
		v.sortDesc = !v.sortDesc
	} else {
		v.sortCol = col
		v.sortDesc = true
	}

	selected, hasSel := v.SelectedRow()
	selCol := v.selection.Col
	v.sort()
	v.selection = NoSelection
	if hasSel {
		for i, r := range v.rows {
			if r.ID == selected.ID {
				v.selection = Selection{Row: i, Col: selCol}
				break
			}
		}
	}
}

// SortState returns the sort column and whether it is descending.
func (v *ListView) SortState() (col int, desc bool) {
	return v.sortCol, v.sortDesc
}

// sort orders rows like a table widget: ID numerically, every other column
// by its text. Dates are compared as dd-MM-yyyy strings, never parsed.
func (v *ListView) sort() {
	col, desc := v.sortCol, v.sortDesc
	sort.SliceStable(v.rows, func(i, j int) bool {
		a, b := v.rows[i], v.rows[j]
		var c int
		if col == ColID {
			switch {
			case a.ID < b.ID:
				c = -1
			case a.ID > b.ID:
				c = 1
			}
		} else {
			fa, _ := a.Field(col)
			fb, _ := b.Field(col)
			c = strings.Compare(fa, fb)
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}
