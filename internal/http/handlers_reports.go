package http

import (
	"net/http"
	"strconv"

	"pennywise/internal/charts"
)

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	report, err := s.app.Reports.Generate(r.Context(), user, q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newReportJSON(report))
}

// handleReportChart renders the period's expense categories as a PNG pie
// chart. An empty period answers 204.
func (s *Server) handleReportChart(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	categories, err := s.app.Reports.ExpenseCategories(r.Context(), user, q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	png, err := charts.CategoryPie("Expenses by category", categories)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(png) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	answer, err := s.app.Reports.Chat(r.Context(), user, req.Query, req.FinancialData.report())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": answer})
}
