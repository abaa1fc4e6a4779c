package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"pennywise/internal/core"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	txs, err := s.app.Ledger.List(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]transactionJSON, 0, len(txs))
	for _, t := range txs {
		out = append(out, newTransactionJSON(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": out})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.app.Ledger.Create(r.Context(), user, req.draft())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, transactionCreatedResponse{
		Message:    "Transaction added successfully",
		ID:         t.ID,
		AICategory: t.Category,
	})
}

// handleDeleteTransaction serves DELETE /transactions/{id} as well as
// DELETE /transactions with ?id=n or {"id": n}.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := transactionID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.app.Ledger.Delete(r.Context(), user, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Transaction deleted successfully"})
}

func transactionID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		raw = strings.TrimSpace(r.URL.Query().Get("id"))
	}
	if raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: transaction id %q", core.ErrMissingField, raw)
		}
		return id, nil
	}

	var req deleteTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		return 0, fmt.Errorf("%w: transaction id", core.ErrMissingField)
	}
	if !req.ID.set {
		return 0, fmt.Errorf("%w: transaction id", core.ErrMissingField)
	}
	return req.ID.value, nil
}
