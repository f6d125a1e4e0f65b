package http

import (
	"net/http"

	"expensetracker/internal/log"
	"expensetracker/internal/tracker"
)

const msgStoreFailure = "Could not update the expense database"

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Parse form error",
			log.FieldError, err.Error(), log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	form, err := ParseExpenseForm(r.Form)
	if err != nil {
		BadRequestError("Invalid date").Write(w)
		return
	}

	s.dispatch(w, r, tracker.Action{Kind: tracker.ActionAdd, Form: form})
}

func (s *Server) handleSelectCell(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}
	row, col, err := ParseCell(r.Form)
	if err != nil {
		BadRequestError("Invalid cell").Write(w)
		return
	}
	s.dispatch(w, r, tracker.Action{Kind: tracker.ActionSelect, Row: row, Col: col})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}
	id, err := ParseExpenseID(r.Form)
	if err != nil {
		BadRequestError("Invalid expense id").Write(w)
		return
	}
	s.dispatch(w, r, tracker.Action{Kind: tracker.ActionDelete, Confirm: ParseConfirm(r.Form), ID: id})
}

func (s *Server) handleEditExpense(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, tracker.Action{Kind: tracker.ActionEdit})
}

func (s *Server) handleSortExpenses(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}
	col, err := ParseColumn(r.Form)
	if err != nil {
		BadRequestError("Invalid column").Write(w)
		return
	}
	s.dispatch(w, r, tracker.Action{Kind: tracker.ActionSort, Col: col})
}

// dispatch runs one tracker action and answers with the re-rendered workspace.
// Rejected actions come back as 422 and store failures as 500, both still
// carrying the workspace so the window stays usable.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, act tracker.Action) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	res, err := s.app.Dispatch(ctx, act)

	resp := NewHTMXResponse()
	if err != nil {
		logger.ErrorContext(ctx, "Action failed",
			log.FieldAction, act.Kind.String(),
			log.FieldError, err.Error())
		res = tracker.Result{Notice: tracker.Critical(msgStoreFailure)}
		resp.Status(http.StatusInternalServerError)
	} else if res.Rejected {
		resp.Status(http.StatusUnprocessableEntity)
	}
	resp.TriggerNotice(res.Notice)

	if err == nil && res.Notice == nil && res.Prompt == nil && res.ID > 0 {
		switch {
		case act.Kind == tracker.ActionAdd:
			resp.TriggerExpenseCreated(res.ID).TriggerFormReset()
		case act.Kind == tracker.ActionDelete && act.Confirm == tracker.ConfirmYes:
			resp.TriggerExpenseDeleted(res.ID)
		}
	}

	body, rerr := s.render("workspace", newPageData(s.app.Snapshot(), res))
	if rerr != nil {
		logger.ErrorContext(ctx, "Template render error",
			log.FieldOperation, log.OpRender, log.FieldError, rerr.Error())
		InternalServerError("Template error").Write(w)
		return
	}
	resp.BodyHTML(body).Write(w)
}

