package http

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/tracker"
)

// isoLayout is the value format of an HTML date input.
const isoLayout = "2006-01-02"

var (
	ErrInvalidDate = errors.New("invalid date")
	ErrInvalidCell = errors.New("invalid cell")
)

// ParseExpenseForm reads the add form. A missing date means today; the date
// is accepted as yyyy-MM-dd (date input) or dd-MM-yyyy and stored as the latter.
func ParseExpenseForm(form url.Values) (tracker.Form, error) {
	date, err := parseFormDate(form.Get("date"))
	if err != nil {
		return tracker.Form{}, err
	}
	return tracker.Form{
		Date:        date,
		Category:    sanitizeInput(form.Get("category")),
		Amount:      sanitizeInput(form.Get("amount")),
		Description: sanitizeInput(form.Get("description")),
	}, nil
}

func parseFormDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Today(), nil
	}
	for _, layout := range []string{isoLayout, core.DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return core.FormatDate(t), nil
		}
	}
	return "", ErrInvalidDate
}

// ParseCell reads the row and col of a clicked table cell.
func ParseCell(form url.Values) (row, col int, err error) {
	row, err = parseIndex(form.Get("row"))
	if err != nil {
		return 0, 0, err
	}
	col, err = ParseColumn(form)
	if err != nil {
		return 0, 0, err
	}
	return row, col, nil
}

// ParseColumn reads the col parameter of a sort or select request.
func ParseColumn(form url.Values) (int, error) {
	return parseIndex(form.Get("col"))
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, ErrInvalidCell
	}
	return n, nil
}

// ParseExpenseID reads the optional id of the record a delete answer refers
// to. Missing means zero.
func ParseExpenseID(form url.Values) (int64, error) {
	v := strings.TrimSpace(form.Get("id"))
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id < 0 {
		return 0, ErrInvalidCell
	}
	return id, nil
}

// ParseConfirm reads the answer to the delete prompt. Anything other than
// yes or no leaves the question open.
func ParseConfirm(form url.Values) tracker.Confirmation {
	switch strings.ToLower(strings.TrimSpace(form.Get("confirm"))) {
	case "yes":
		return tracker.ConfirmYes
	case "no":
		return tracker.ConfirmNo
	}
	return tracker.ConfirmUnanswered
}
