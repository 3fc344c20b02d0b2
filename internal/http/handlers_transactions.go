package http

import (
	"net/http"

	"budget/internal/core"
	applog "budget/internal/log"
)

const msgTransactionNotFound = "Transaction not found"

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.deps.Transactions.List(r.Context(), ownerID(r))
	if err != nil {
		s.writeServiceError(w, r, err, msgTransactionNotFound, "Failed to fetch transactions", applog.OpList)
		return
	}
	NewJSONResponse().Body(toTransactionsJSON(txs)).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.deps.Transactions.Get(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err, msgTransactionNotFound, "Failed to fetch transaction", applog.OpRead)
		return
	}
	NewJSONResponse().Body(toTransactionJSON(t)).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, err, msgTransactionNotFound, "Failed to create transaction", applog.OpCreate)
		return
	}
	in, err := req.input()
	if err != nil {
		s.writeServiceError(w, r, err, msgTransactionNotFound, "Failed to create transaction", applog.OpCreate)
		return
	}

	t, err := s.deps.Transactions.Create(r.Context(), ownerID(r), in)
	if err != nil {
		s.writeServiceError(w, r, err, msgTransactionNotFound, "Failed to create transaction", applog.OpCreate)
		return
	}

	s.logSaved(r, applog.OpCreate, t)
	NewJSONResponse().Status(http.StatusCreated).Body(toTransactionJSON(t)).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, err, msgTransactionNotFound, "Failed to update transaction", applog.OpUpdate)
		return
	}
	in, err := req.input()
	if err != nil {
		s.writeServiceError(w, r, err, msgTransactionNotFound, "Failed to update transaction", applog.OpUpdate)
		return
	}

	t, err := s.deps.Transactions.Update(r.Context(), ownerID(r), r.PathValue("id"), in)
	if err != nil {
		s.writeServiceError(w, r, err, msgTransactionNotFound, "Failed to update transaction", applog.OpUpdate)
		return
	}

	s.logSaved(r, applog.OpUpdate, t)
	NewJSONResponse().Body(toTransactionJSON(t)).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Transactions.Delete(r.Context(), ownerID(r), r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err, msgTransactionNotFound, "Failed to delete transaction", applog.OpDelete)
		return
	}
	NewJSONResponse().Body(MessageBody{Message: "Transaction deleted successfully"}).Write(w)
}

func (s *Server) handleTransactionStats(w http.ResponseWriter, r *http.Request) {
	sum, err := s.deps.Transactions.Stats(r.Context(), ownerID(r))
	if err != nil {
		s.writeServiceError(w, r, err, msgTransactionNotFound, "Failed to fetch statistics", applog.OpRead)
		return
	}
	NewJSONResponse().Body(toStatsJSON(sum)).Write(w)
}

func (s *Server) handleTransactionBreakdown(w http.ResponseWriter, r *http.Request) {
	b, err := s.deps.Transactions.Breakdown(r.Context(), ownerID(r))
	if err != nil {
		s.writeServiceError(w, r, err, msgTransactionNotFound, "Failed to fetch breakdown", applog.OpRead)
		return
	}
	NewJSONResponse().Body(toBreakdownJSON(b)).Write(w)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	all := core.Categories()
	out := make([]categoryJSON, 0, len(all))
	for _, c := range all {
		out = append(out, toCategoryJSON(c))
	}
	NewJSONResponse().Header("Cache-Control", "public, max-age=3600").Body(out).Write(w)
}

func (s *Server) logSaved(r *http.Request, op string, t core.Transaction) {
	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogTransactionSaved(r.Context(), op, t.OwnerID, t.ID, string(t.Kind), t.Category, t.Amount.Cents)
}
