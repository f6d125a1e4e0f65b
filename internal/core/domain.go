package core

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the dd-MM-yyyy text form used for the date column.
const DateLayout = "02-01-2006"

// Categories is the closed set offered by the category dropdown.
// The empty entry is the default and is rejected when adding.
var Categories = []string{"", "Food", "Transportation", "Rent", "Shopping", "Entertainment", "Bills", "Other"}

type (
	// Expense is one row of the expenses table.
	Expense struct {
		ID          int64 // Assigned by the store on insert
		Date        string
		Category    string
		Amount      string // Stored as typed
		Description string
	}

	// NewExpense holds the caller-supplied fields of an expense about to be inserted.
	NewExpense struct {
		Date        string
		Category    string
		Amount      string
		Description string
	}
)

var (
	ErrEmptyCategory   = errors.New("empty category")
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNoSelection     = errors.New("no expense selected")
)

// FormatDate renders t in the dd-MM-yyyy layout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Today returns the current local date in the dd-MM-yyyy layout.
func Today() string {
	return FormatDate(time.Now())
}

// IsCategory reports whether c belongs to the category set.
func IsCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Validate applies the form-level rule: the category must be chosen.
// Amount and description are accepted as typed.
func (e NewExpense) Validate() error {
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if !IsCategory(e.Category) {
		return ErrUnknownCategory
	}
	return nil
}

// Field returns the text of column col in the fixed order
// [id, date, category, amount, description].
func (e Expense) Field(col int) (string, bool) {
	switch col {
	case 0:
		return formatID(e.ID), true
	case 1:
		return e.Date, true
	case 2:
		return e.Category, true
	case 3:
		return e.Amount, true
	case 4:
		return e.Description, true
	}
	return "", false
}
