// Package tracker holds the single UI state of the expense tracker: the add
// form, the table view and the store they act on.
//
// Every user action is an Action handled by App.Dispatch. Dispatch holds one
// lock while it touches state and the store, so actions run strictly one
// after another no matter how many HTTP handlers call it. Change events are
// published after the lock is released.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

// Store is the record store the tracker works against.
type Store interface {
	Insert(ctx context.Context, e core.NewExpense) (int64, error)
	DeleteByID(ctx context.Context, id int64) error
	SelectAll(ctx context.Context) ([]core.Expense, error)
}

// EventPublisher is notified after the store changed. Publishing is best effort.
type EventPublisher interface {
	PublishExpenseCreated(ctx context.Context, e core.Expense) error
	PublishExpenseDeleted(ctx context.Context, id int64) error
}

// ActionKind enumerates the user actions.
type ActionKind int

const (
	ActionReload ActionKind = iota
	ActionAdd
	ActionSelect
	ActionDelete
	ActionEdit
	ActionSort
)

func (k ActionKind) String() string {
	switch k {
	case ActionReload:
		return "reload"
	case ActionAdd:
		return "add"
	case ActionSelect:
		return "select"
	case ActionDelete:
		return "delete"
	case ActionEdit:
		return "edit"
	case ActionSort:
		return "sort"
	}
	return fmt.Sprintf("action(%d)", int(k))
}

// Confirmation is the answer to a yes/no prompt.
type Confirmation int

const (
	ConfirmUnanswered Confirmation = iota
	ConfirmYes
	ConfirmNo
)

// Action is one user action. Only the fields relevant to Kind are read.
type Action struct {
	Kind    ActionKind
	Form    Form         // ActionAdd
	Row     int          // ActionSelect
	Col     int          // ActionSelect, ActionSort
	Confirm Confirmation // ActionDelete
	// ID is the record the delete prompt asked about. Zero accepts
	// whatever record was prompted.
	ID int64 // ActionDelete
}

// Result describes what the user should see after an action.
type Result struct {
	Notice *Notice
	// Prompt is set when the action waits for a yes/no answer.
	Prompt *Notice
	// ID of the record created, deleted or awaiting delete confirmation.
	ID int64
	// Rejected is set when the action was refused and nothing changed.
	Rejected bool
}

// Options configure an App.
type Options struct {
	// StrictAmount rejects amounts that are not decimal numbers.
	StrictAmount bool
	Events       EventPublisher
	Logger       *log.Logger
}

// App owns the form, the view and the store handle.
type App struct {
	mu     sync.Mutex
	store  Store
	form   Form
	view   *ListView
	strict bool
	events EventPublisher
	logger *log.Logger

	// pendingDelete is the record the open delete prompt asked about.
	pendingDelete int64
}

// NewApp builds the tracker around store. Call Dispatch with ActionReload
// (or Start) before showing the view.
func NewApp(store Store, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &App{
		store:  store,
		form:   NewForm(),
		view:   NewListView(),
		strict: opts.StrictAmount,
		events: opts.Events,
		logger: logger.WithComponent(log.ComponentTracker),
	}
}

// Start loads the table for the first time.
func (a *App) Start(ctx context.Context) error {
	_, err := a.Dispatch(ctx, Action{Kind: ActionReload})
	return err
}

// Dispatch applies one action. The returned error is reserved for store
// failures; validation problems come back as a warning Notice.
func (a *App) Dispatch(ctx context.Context, act Action) (Result, error) {
	a.mu.Lock()
	res, ev, err := a.apply(ctx, act)
	a.mu.Unlock()

	if ev != nil {
		a.publish(ctx, ev)
	}
	return res, err
}

// changeEvent is a store change waiting to be published.
type changeEvent struct {
	created *core.Expense
	deleted int64
}

func (a *App) apply(ctx context.Context, act Action) (Result, *changeEvent, error) {
	a.logger.DebugContext(ctx, "Dispatching action", log.FieldAction, act.Kind.String())

	if act.Kind != ActionDelete && act.Kind != ActionSort {
		a.pendingDelete = 0
	}

	switch act.Kind {
	case ActionReload:
		return Result{}, nil, a.view.Reload(ctx, a.store)
	case ActionAdd:
		return a.addExpense(ctx, act.Form)
	case ActionSelect:
		a.view.Select(act.Row, act.Col)
		return Result{}, nil, nil
	case ActionDelete:
		return a.deleteSelected(ctx, act.Confirm, act.ID)
	case ActionEdit:
		return a.editSelected(), nil, nil
	case ActionSort:
		a.view.SortBy(act.Col)
		return Result{}, nil, nil
	}
	return Result{}, nil, fmt.Errorf("unknown action %v", act.Kind)
}

// publish is best effort: failures are logged and never reach the user.
func (a *App) publish(ctx context.Context, ev *changeEvent) {
	if a.events == nil {
		return
	}
	if ev.created != nil {
		if err := a.events.PublishExpenseCreated(ctx, *ev.created); err != nil {
			a.logger.ErrorContext(ctx, "Failed to publish expense event", log.FieldExpenseID, ev.created.ID, log.FieldError, err.Error())
		}
		return
	}
	if err := a.events.PublishExpenseDeleted(ctx, ev.deleted); err != nil {
		a.logger.ErrorContext(ctx, "Failed to publish expense event", log.FieldExpenseID, ev.deleted, log.FieldError, err.Error())
	}
}

func (a *App) addExpense(ctx context.Context, f Form) (Result, *changeEvent, error) {
	a.form = f
	exp := f.Expense()

	if err := exp.Validate(); err != nil {
		a.logger.WarnContext(ctx, "Expense rejected",
			log.FieldOperation, log.OpValidate,
			log.FieldCategory, exp.Category,
			log.FieldError, err.Error())
		if errors.Is(err, core.ErrEmptyCategory) {
			return rejected(TitleDataError, MsgEmptyCategory), nil, nil
		}
		return rejected(TitleDataError, MsgUnknownCategory), nil, nil
	}
	if a.strict {
		if _, err := core.ParseAmount(exp.Amount); err != nil {
			return rejected(TitleDataError, MsgInvalidAmount), nil, nil
		}
	}

	id, err := a.store.Insert(ctx, exp)
	if err != nil {
		return Result{}, nil, err
	}

	a.logger.InfoContext(ctx, "Expense created",
		log.NewFields().WithExpense(id, exp.Date, exp.Category, exp.Amount).WithOperation(log.OpCreate).ToSlice()...)

	a.form.Reset()
	created := &core.Expense{ID: id, Date: exp.Date, Category: exp.Category, Amount: exp.Amount, Description: exp.Description}
	if err := a.view.Reload(ctx, a.store); err != nil {
		return Result{ID: id}, &changeEvent{created: created}, err
	}
	return Result{ID: id}, &changeEvent{created: created}, nil
}

// deleteSelected asks first and deletes only when the answer confirms the
// record that was asked about. A yes without an open prompt asks again.
func (a *App) deleteSelected(ctx context.Context, confirm Confirmation, confirmedID int64) (Result, *changeEvent, error) {
	row, ok := a.view.SelectedRow()
	if !ok {
		a.pendingDelete = 0
		a.logger.DebugContext(ctx, "Delete rejected", log.FieldError, core.ErrNoSelection.Error())
		return rejected(TitleNoSelection, MsgChooseToDelete), nil, nil
	}

	switch confirm {
	case ConfirmNo:
		a.pendingDelete = 0
		return Result{}, nil, nil
	case ConfirmYes:
		if a.pendingDelete == row.ID && (confirmedID == 0 || confirmedID == row.ID) {
			break
		}
		fallthrough
	default:
		a.pendingDelete = row.ID
		return Result{Prompt: question(TitleConfirmation, MsgConfirmDelete), ID: row.ID}, nil, nil
	}
	a.pendingDelete = 0

	if err := a.store.DeleteByID(ctx, row.ID); err != nil {
		return Result{}, nil, err
	}

	a.logger.InfoContext(ctx, "Expense deleted", log.FieldExpenseID, row.ID, log.FieldOperation, log.OpDelete)

	ev := &changeEvent{deleted: row.ID}
	if err := a.view.Reload(ctx, a.store); err != nil {
		return Result{ID: row.ID}, ev, err
	}
	return Result{ID: row.ID}, ev, nil
}

// editSelected only shows the selected cell; nothing is written back.
func (a *App) editSelected() Result {
	text, ok := a.view.SelectedCell()
	if !ok {
		return rejected(TitleNoSelection, MsgChooseToEdit)
	}
	return Result{Notice: warning(TitleConfirmation, fmt.Sprintf(MsgSelectedData, text))}
}

func rejected(title, msg string) Result {
	return Result{Notice: warning(title, msg), Rejected: true}
}

// State is a consistent copy of what the window shows.
type State struct {
	Form       Form
	Rows       []core.Expense
	Selection  Selection
	SortCol    int
	SortDesc   bool
	Categories []string
}

// Snapshot returns the current UI state.
func (a *App) Snapshot() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	col, desc := a.view.SortState()
	return State{
		Form:       a.form,
		Rows:       a.view.Rows(),
		Selection:  a.view.Selection(),
		SortCol:    col,
		SortDesc:   desc,
		Categories: append([]string(nil), core.Categories...),
	}
}
