package http

import (
	"net/http"

	applog "budget/internal/log"
)

const msgBudgetNotFound = "Budget not found"

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	doc, err := s.deps.Budgets.Get(r.Context(), ownerID(r))
	if err != nil {
		s.writeServiceError(w, r, err, msgBudgetNotFound, "Failed to fetch budget", applog.OpRead)
		return
	}
	NewJSONResponse().Body(toBudgetJSON(doc)).Write(w)
}

func (s *Server) handleSaveBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, err, msgBudgetNotFound, "Failed to save budget", applog.OpUpdate)
		return
	}

	doc, err := s.deps.Budgets.Save(r.Context(), ownerID(r), req.entries())
	if err != nil {
		s.writeServiceError(w, r, err, msgBudgetNotFound, "Failed to save budget", applog.OpUpdate)
		return
	}

	applog.FromContext(r.Context()).WithComponent(applog.ComponentBudget).InfoContext(r.Context(), "Budget saved",
		applog.FieldUserID, doc.OwnerID,
		"categories", len(doc.Categories),
		"total_budget_cents", doc.TotalBudget.Cents)
	NewJSONResponse().Body(toBudgetJSON(doc)).Write(w)
}

func (s *Server) handleBudgetOverview(w http.ResponseWriter, r *http.Request) {
	o, err := s.deps.Budgets.Overview(r.Context(), ownerID(r))
	if err != nil {
		s.writeServiceError(w, r, err, msgBudgetNotFound, "Failed to fetch budget overview", applog.OpRead)
		return
	}
	NewJSONResponse().Body(toOverviewJSON(o)).Write(w)
}
