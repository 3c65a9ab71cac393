package http

import (
	"fmt"
	"net/http"

	"familybudget/internal/core"
	applog "familybudget/internal/log"
	"familybudget/internal/services"
)

// recordKinds maps collection path segments to ledger record kinds.
var recordKinds = map[string]string{
	"expenses": services.RecordExpense,
	"incomes":  services.RecordIncome,
	"goals":    services.RecordGoal,
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.requireOwner(w, r)
	if !ok {
		return
	}
	month, err := ParseMonthParam(r.URL.Query())
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	list, err := s.ledger.Expenses(r.Context(), owner)
	if err != nil {
		s.writeError(w, r, applog.OpList, err)
		return
	}
	out := make([]core.Expense, 0, len(list))
	for _, e := range list {
		if month == "" || month.Contains(e.Date) {
			out = append(out, e)
		}
	}
	NewJSONResponse().JSON(out).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.requireOwner(w, r)
	if !ok {
		return
	}
	params, err := requestParams(r)
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	exp, err := ParseExpense(params, s.now())
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	saved, err := s.ledger.AddExpense(r.Context(), owner, exp)
	if err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).JSON(saved).Write(w)
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.requireOwner(w, r)
	if !ok {
		return
	}
	month, err := ParseMonthParam(r.URL.Query())
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	list, err := s.ledger.Incomes(r.Context(), owner)
	if err != nil {
		s.writeError(w, r, applog.OpList, err)
		return
	}
	out := make([]core.Income, 0, len(list))
	for _, in := range list {
		if month == "" || month.Contains(in.Date) {
			out = append(out, in)
		}
	}
	NewJSONResponse().JSON(out).Write(w)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.requireOwner(w, r)
	if !ok {
		return
	}
	params, err := requestParams(r)
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	in, err := ParseIncome(params, s.now())
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	saved, err := s.ledger.AddIncome(r.Context(), owner, in)
	if err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).JSON(saved).Write(w)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.requireOwner(w, r)
	if !ok {
		return
	}
	month, err := ParseMonthParam(r.URL.Query())
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	goals, err := s.ledger.Goals(r.Context(), owner, month)
	if err != nil {
		s.writeError(w, r, applog.OpList, err)
		return
	}
	NewJSONResponse().JSON(goals).Write(w)
}

// handleSetGoal creates or replaces the goal for (category, month); with an
// id it updates that goal.
func (s *Server) handleSetGoal(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.requireOwner(w, r)
	if !ok {
		return
	}
	params, err := requestParams(r)
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	goal, err := ParseGoal(params, s.now())
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	saved, err := s.ledger.SetGoal(r.Context(), owner, goal)
	if err != nil {
		s.writeError(w, r, applog.OpUpdate, err)
		return
	}
	NewJSONResponse().JSON(saved).Write(w)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.requireOwner(w, r)
	if !ok {
		return
	}
	kind, known := recordKinds[r.PathValue("kind")]
	if !known {
		NotFoundError(fmt.Sprintf("unknown collection %q", r.PathValue("kind"))).Write(w)
		return
	}
	id := sanitizeInput(r.PathValue("id"))
	if id == "" {
		BadRequestError("missing record id").Write(w)
		return
	}
	if err := s.ledger.Delete(r.Context(), owner, kind, id); err != nil {
		s.writeError(w, r, applog.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
