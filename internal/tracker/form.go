package tracker

import (
	"expensetracker/internal/core"
)

// Form holds the current-entry fields of the add form.
type Form struct {
	Date        string
	Category    string
	Amount      string
	Description string
}

// NewForm returns a form with today's date and everything else blank.
func NewForm() Form {
	f := Form{}
	f.Reset()
	return f
}

// Reset puts the form back to its initial state.
func (f *Form) Reset() {
	f.Date = core.Today()
	f.Category = core.Categories[0]
	f.Amount = ""
	f.Description = ""
}

// Expense converts the form into an insert request.
func (f Form) Expense() core.NewExpense {
	return core.NewExpense{
		Date:        f.Date,
		Category:    f.Category,
		Amount:      f.Amount,
		Description: f.Description,
	}
}
