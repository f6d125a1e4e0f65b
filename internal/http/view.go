package http

import (
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/tracker"
)

type columnHeader struct {
	Index  int
	Name   string
	Sorted bool
	Desc   bool
}

type tableCell struct {
	Row      int
	Col      int
	Text     string
	Selected bool
}

type tableRow struct {
	Cells    []tableCell
	Selected bool
}

// pageData is what the templates render: the tracker state plus the outcome
// of the last action.
type pageData struct {
	Title       string
	Form        tracker.Form
	FormDateISO string
	Categories  []string
	Columns     []columnHeader
	Rows        []tableRow
	Notice      *tracker.Notice
	Prompt      *tracker.Notice
	// PromptID is the record the delete prompt asks about.
	PromptID int64
}

func newPageData(st tracker.State, res tracker.Result) pageData {
	data := pageData{
		Title:       pageTitle,
		Form:        st.Form,
		FormDateISO: isoDate(st.Form.Date),
		Categories:  st.Categories,
		Notice:      res.Notice,
		Prompt:      res.Prompt,
	}
	if res.Prompt != nil {
		data.PromptID = res.ID
	}

	for i, name := range tracker.Columns {
		data.Columns = append(data.Columns, columnHeader{
			Index:  i,
			Name:   name,
			Sorted: i == st.SortCol,
			Desc:   st.SortDesc,
		})
	}

	data.Rows = make([]tableRow, 0, len(st.Rows))
	for i, exp := range st.Rows {
		row := tableRow{Selected: st.Selection.Valid() && st.Selection.Row == i}
		for col := range tracker.Columns {
			text, _ := exp.Field(col)
			row.Cells = append(row.Cells, tableCell{
				Row:      i,
				Col:      col,
				Text:     text,
				Selected: row.Selected && st.Selection.Col == col,
			})
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

// isoDate converts a stored dd-MM-yyyy date to the value a date input expects.
func isoDate(date string) string {
	t, err := time.Parse(core.DateLayout, date)
	if err != nil {
		return ""
	}
	return t.Format(isoLayout)
}
