package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pennywise/internal/core"
)

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	goals, err := s.app.Goals.List(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]goalJSON, 0, len(goals))
	for _, g := range goals {
		out = append(out, newGoalJSON(g))
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": out})
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.app.Goals.Create(r.Context(), user, req.draft())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{Message: "Savings goal created successfully", ID: g.ID})
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	budgets, err := s.app.Budgets.List(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]budgetJSON, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, newBudgetJSON(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{"budgets": out})
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.app.Budgets.Create(r.Context(), user, req.draft())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{Message: "Budget created successfully", ID: b.ID})
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.app.Feed.Achievements(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]achievementJSON, 0, len(list))
	for _, a := range list {
		out = append(out, achievementJSON{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Icon:        a.Icon,
			EarnedAt:    a.EarnedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"achievements": out})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.app.Feed.Notifications(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]notificationJSON, 0, len(list))
	for _, n := range list {
		out = append(out, notificationJSON{
			ID:        n.ID,
			Message:   n.Message,
			Type:      n.Type,
			CreatedAt: n.CreatedAt,
			IsRead:    n.IsRead,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": out})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, fmt.Errorf("%w: notification id", core.ErrMissingField))
		return
	}
	if err := s.app.Feed.MarkRead(r.Context(), user, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Notification marked as read"})
}
