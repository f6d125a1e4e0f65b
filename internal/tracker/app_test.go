package tracker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/storage"
)

type memStore struct {
	nextID  int64
	items   []core.Expense
	failAll error
}

func (m *memStore) Insert(_ context.Context, e core.NewExpense) (int64, error) {
	if m.failAll != nil {
		return 0, m.failAll
	}
	m.nextID++
	m.items = append(m.items, core.Expense{ID: m.nextID, Date: e.Date, Category: e.Category, Amount: e.Amount, Description: e.Description})
	return m.nextID, nil
}

func (m *memStore) DeleteByID(_ context.Context, id int64) error {
	if m.failAll != nil {
		return m.failAll
	}
	for i, e := range m.items {
		if e.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memStore) SelectAll(_ context.Context) ([]core.Expense, error) {
	if m.failAll != nil {
		return nil, m.failAll
	}
	return append([]core.Expense(nil), m.items...), nil
}

type recordingEvents struct {
	created []core.Expense
	deleted []int64
	err     error
}

func (r *recordingEvents) PublishExpenseCreated(_ context.Context, e core.Expense) error {
	r.created = append(r.created, e)
	return r.err
}

func (r *recordingEvents) PublishExpenseDeleted(_ context.Context, id int64) error {
	r.deleted = append(r.deleted, id)
	return r.err
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: &bytes.Buffer{}})
}

func newTestApp(t *testing.T, store Store, opts Options) *App {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	app := NewApp(store, opts)
	require.NoError(t, app.Start(context.Background()))
	return app
}

func add(t *testing.T, app *App, date, category, amount, desc string) Result {
	t.Helper()
	res, err := app.Dispatch(context.Background(), Action{
		Kind: ActionAdd,
		Form: Form{Date: date, Category: category, Amount: amount, Description: desc},
	})
	require.NoError(t, err)
	return res
}

// confirmDelete answers the delete prompt for the selected row with yes.
func confirmDelete(t *testing.T, app *App) Result {
	t.Helper()
	ctx := context.Background()
	res, err := app.Dispatch(ctx, Action{Kind: ActionDelete})
	require.NoError(t, err)
	require.NotNil(t, res.Prompt)
	res, err = app.Dispatch(ctx, Action{Kind: ActionDelete, Confirm: ConfirmYes, ID: res.ID})
	require.NoError(t, err)
	return res
}

func TestAddExpenseIncrementsCountWithFreshID(t *testing.T) {
	app := newTestApp(t, &memStore{}, Options{})

	res := add(t, app, "05-06-2024", "Food", "12.50", "lunch")
	require.Nil(t, res.Notice)
	assert.Equal(t, int64(1), res.ID)

	res = add(t, app, "06-06-2024", "Food", "3", "coffee")
	assert.Equal(t, int64(2), res.ID)
	assert.Len(t, app.Snapshot().Rows, 2)
}

func TestAddExpenseResetsForm(t *testing.T) {
	app := newTestApp(t, &memStore{}, Options{})
	add(t, app, "01-01-2020", "Rent", "800", "january")

	f := app.Snapshot().Form
	assert.Equal(t, core.Today(), f.Date)
	assert.Equal(t, "", f.Category)
	assert.Equal(t, "", f.Amount)
	assert.Equal(t, "", f.Description)
}

func TestAddExpenseEmptyCategoryWarns(t *testing.T) {
	store := &memStore{}
	app := newTestApp(t, store, Options{})

	res := add(t, app, "05-06-2024", "", "12.50", "lunch")
	require.NotNil(t, res.Notice)
	assert.True(t, res.Rejected)
	assert.Equal(t, LevelWarning, res.Notice.Level)
	assert.Equal(t, TitleDataError, res.Notice.Title)
	assert.Equal(t, MsgEmptyCategory, res.Notice.Message)
	assert.Empty(t, store.items)

	// Entered values stay in the form so the user can fix them
	f := app.Snapshot().Form
	assert.Equal(t, "12.50", f.Amount)
	assert.Equal(t, "lunch", f.Description)
}

func TestAddExpenseAcceptsAnyAmountByDefault(t *testing.T) {
	store := &memStore{}
	app := newTestApp(t, store, Options{})

	res := add(t, app, "05-06-2024", "Other", "a lot", "")
	assert.Nil(t, res.Notice)
	assert.Len(t, store.items, 1)
}

func TestAddExpenseStrictAmount(t *testing.T) {
	store := &memStore{}
	app := newTestApp(t, store, Options{StrictAmount: true})

	res := add(t, app, "05-06-2024", "Other", "a lot", "")
	require.NotNil(t, res.Notice)
	assert.Equal(t, MsgInvalidAmount, res.Notice.Message)
	assert.Empty(t, store.items)

	res = add(t, app, "05-06-2024", "Other", "12,50", "")
	assert.Nil(t, res.Notice)
	assert.Len(t, store.items, 1)
}

func TestDeleteWithoutSelectionWarns(t *testing.T) {
	store := &memStore{}
	app := newTestApp(t, store, Options{})
	add(t, app, "05-06-2024", "Food", "1", "")

	res, err := app.Dispatch(context.Background(), Action{Kind: ActionDelete, Confirm: ConfirmYes})
	require.NoError(t, err)
	require.NotNil(t, res.Notice)
	assert.Equal(t, TitleNoSelection, res.Notice.Title)
	assert.Equal(t, MsgChooseToDelete, res.Notice.Message)
	assert.Len(t, store.items, 1)
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	store := &memStore{}
	app := newTestApp(t, store, Options{})
	add(t, app, "05-06-2024", "Food", "1", "")
	ctx := context.Background()

	_, err := app.Dispatch(ctx, Action{Kind: ActionSelect, Row: 0, Col: ColCategory})
	require.NoError(t, err)

	res, err := app.Dispatch(ctx, Action{Kind: ActionDelete})
	require.NoError(t, err)
	require.NotNil(t, res.Prompt)
	assert.Equal(t, MsgConfirmDelete, res.Prompt.Message)
	assert.Len(t, store.items, 1)

	res, err = app.Dispatch(ctx, Action{Kind: ActionDelete, Confirm: ConfirmNo})
	require.NoError(t, err)
	assert.Nil(t, res.Notice)
	assert.Len(t, store.items, 1)

	// No answers the prompt; a later yes has to be asked again
	res, err = app.Dispatch(ctx, Action{Kind: ActionDelete, Confirm: ConfirmYes})
	require.NoError(t, err)
	require.NotNil(t, res.Prompt)
	assert.Len(t, store.items, 1)

	res, err = app.Dispatch(ctx, Action{Kind: ActionDelete, Confirm: ConfirmYes, ID: res.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ID)
	assert.Empty(t, store.items)
	assert.Empty(t, app.Snapshot().Rows)
	assert.False(t, app.Snapshot().Selection.Valid())
}

func TestEditSelectedShowsCell(t *testing.T) {
	store := &memStore{}
	app := newTestApp(t, store, Options{})
	add(t, app, "05-06-2024", "Food", "12.50", "lunch")
	ctx := context.Background()

	res, err := app.Dispatch(ctx, Action{Kind: ActionEdit})
	require.NoError(t, err)
	require.NotNil(t, res.Notice)
	assert.Equal(t, MsgChooseToEdit, res.Notice.Message)

	_, err = app.Dispatch(ctx, Action{Kind: ActionSelect, Row: 0, Col: ColDescription})
	require.NoError(t, err)
	res, err = app.Dispatch(ctx, Action{Kind: ActionEdit})
	require.NoError(t, err)
	require.NotNil(t, res.Notice)
	assert.Equal(t, LevelWarning, res.Notice.Level)
	assert.Equal(t, TitleConfirmation, res.Notice.Title)
	assert.Equal(t, "Selected Data was lunch", res.Notice.Message)
	assert.False(t, res.Rejected)

	// Nothing is written back
	assert.Equal(t, "lunch", store.items[0].Description)
}

func TestDeleteRequiresPromptForSameRecord(t *testing.T) {
	store := &memStore{}
	app := newTestApp(t, store, Options{})
	add(t, app, "05-06-2024", "Food", "1", "a")
	add(t, app, "06-06-2024", "Food", "2", "b")
	ctx := context.Background()

	// Yes without an open prompt only asks
	_, err := app.Dispatch(ctx, Action{Kind: ActionSelect, Row: 0, Col: ColID})
	require.NoError(t, err)
	res, err := app.Dispatch(ctx, Action{Kind: ActionDelete, Confirm: ConfirmYes})
	require.NoError(t, err)
	require.NotNil(t, res.Prompt)
	prompted := res.ID
	assert.Len(t, store.items, 2)

	// Yes naming another record asks again
	res, err = app.Dispatch(ctx, Action{Kind: ActionDelete, Confirm: ConfirmYes, ID: prompted + 100})
	require.NoError(t, err)
	require.NotNil(t, res.Prompt)
	assert.Len(t, store.items, 2)

	// Moving the selection drops the open prompt
	_, err = app.Dispatch(ctx, Action{Kind: ActionSelect, Row: 1, Col: ColID})
	require.NoError(t, err)
	res, err = app.Dispatch(ctx, Action{Kind: ActionDelete, Confirm: ConfirmYes, ID: prompted})
	require.NoError(t, err)
	require.NotNil(t, res.Prompt)
	assert.NotEqual(t, prompted, res.ID)
	assert.Len(t, store.items, 2)

	res, err = app.Dispatch(ctx, Action{Kind: ActionDelete, Confirm: ConfirmYes, ID: res.ID})
	require.NoError(t, err)
	assert.Nil(t, res.Prompt)
	assert.Len(t, store.items, 1)
	assert.Equal(t, prompted, store.items[0].ID)
}

// blockingEvents holds every publish until release is closed.
type blockingEvents struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingEvents) PublishExpenseCreated(ctx context.Context, _ core.Expense) error {
	b.entered <- struct{}{}
	<-b.release
	return nil
}

func (b *blockingEvents) PublishExpenseDeleted(ctx context.Context, _ int64) error {
	b.entered <- struct{}{}
	<-b.release
	return nil
}

func TestSlowPublisherDoesNotBlockActions(t *testing.T) {
	events := &blockingEvents{entered: make(chan struct{}, 4), release: make(chan struct{})}
	app := newTestApp(t, &memStore{}, Options{Events: events})
	ctx := context.Background()

	done := make(chan Result, 1)
	go func() {
		res, _ := app.Dispatch(ctx, Action{Kind: ActionAdd, Form: Form{Date: "05-06-2024", Category: "Food"}})
		done <- res
	}()

	select {
	case <-events.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("publisher was never called")
	}

	// The first add is stuck publishing; state and other actions stay available
	state := make(chan State, 1)
	go func() { state <- app.Snapshot() }()
	select {
	case st := <-state:
		assert.Len(t, st.Rows, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("Snapshot blocked behind a publish")
	}

	sorted := make(chan error, 1)
	go func() {
		_, err := app.Dispatch(ctx, Action{Kind: ActionSort, Col: ColID})
		sorted <- err
	}()
	select {
	case err := <-sorted:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Dispatch blocked behind a publish")
	}

	close(events.release)
	select {
	case res := <-done:
		assert.Equal(t, int64(1), res.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("add never returned")
	}
}

func TestStoreFailureIsReturned(t *testing.T) {
	boom := errors.New("disk gone")
	store := &memStore{}
	app := newTestApp(t, store, Options{})
	store.failAll = boom

	_, err := app.Dispatch(context.Background(), Action{Kind: ActionAdd, Form: Form{Date: "01-01-2024", Category: "Food"}})
	assert.ErrorIs(t, err, boom)
}

func TestEventsArePublished(t *testing.T) {
	events := &recordingEvents{err: errors.New("broker down")}
	app := newTestApp(t, &memStore{}, Options{Events: events})
	ctx := context.Background()

	res := add(t, app, "05-06-2024", "Food", "12.50", "lunch")
	assert.Nil(t, res.Notice, "publish failures must not reach the user")
	require.Len(t, events.created, 1)
	assert.Equal(t, int64(1), events.created[0].ID)

	_, err := app.Dispatch(ctx, Action{Kind: ActionSelect, Row: 0, Col: 0})
	require.NoError(t, err)
	confirmDelete(t, app)
	assert.Equal(t, []int64{1}, events.deleted)
}

func TestUnknownActionFails(t *testing.T) {
	app := newTestApp(t, &memStore{}, Options{})
	_, err := app.Dispatch(context.Background(), Action{Kind: ActionKind(99)})
	assert.Error(t, err)
	assert.Equal(t, "action(99)", ActionKind(99).String())
}

func TestInsertsMinusDeletesWithSQLite(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "expense.db"))
	require.NoError(t, err)
	defer repo.Close()

	app := newTestApp(t, repo, Options{})
	ctx := context.Background()

	const n, m = 6, 2
	for i := 1; i <= n; i++ {
		add(t, app, fmt.Sprintf("%02d-03-2024", i), "Shopping", fmt.Sprintf("%d.25", i), fmt.Sprintf("item %d", i))
	}
	for i := 0; i < m; i++ {
		_, err := app.Dispatch(ctx, Action{Kind: ActionSelect, Row: 0, Col: ColID})
		require.NoError(t, err)
		confirmDelete(t, app)
	}

	rows := app.Snapshot().Rows
	require.Len(t, rows, n-m)

	// Newest date text first; the two newest were deleted from the top
	for i, r := range rows {
		day := n - m - i
		assert.Equal(t, int64(day), r.ID)
		assert.Equal(t, fmt.Sprintf("%02d-03-2024", day), r.Date)
		assert.Equal(t, "Shopping", r.Category)
		assert.Equal(t, fmt.Sprintf("%d.25", day), r.Amount)
		assert.Equal(t, fmt.Sprintf("item %d", day), r.Description)
	}
}

func TestScenarioEmptyToTwoRows(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "expense.db"))
	require.NoError(t, err)
	defer repo.Close()

	app := newTestApp(t, repo, Options{})
	assert.Empty(t, app.Snapshot().Rows)

	add(t, app, "05-06-2024", "Food", "12.50", "lunch")
	rows := app.Snapshot().Rows
	require.Len(t, rows, 1)
	assert.Equal(t, core.Expense{ID: 1, Date: "05-06-2024", Category: "Food", Amount: "12.50", Description: "lunch"}, rows[0])

	add(t, app, "07-06-2024", "Transportation", "2", "bus")
	rows = app.Snapshot().Rows
	require.Len(t, rows, 2)
	assert.Equal(t, int64(2), rows[0].ID)
	assert.Equal(t, "07-06-2024", rows[0].Date)
	assert.Equal(t, int64(1), rows[1].ID)
}
