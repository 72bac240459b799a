package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bilancio/internal/core"
)

type goalDTO struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	TargetAmount  string `json:"targetAmount"`
	CurrentAmount string `json:"currentAmount"`
	TargetDate    string `json:"targetDate,omitempty"`
	Priority      string `json:"priority"`
	Completed     bool   `json:"completed"`
}

func toGoalDTO(g core.SavingsGoal) goalDTO {
	dto := goalDTO{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  formatDecimal(g.TargetAmount.Cents),
		CurrentAmount: formatDecimal(g.CurrentAmount.Cents),
		Priority:      string(g.Priority),
		Completed:     g.IsCompleted(),
	}
	if !g.TargetDate.IsZero() {
		dto.TargetDate = g.TargetDate.Format("2006-01-02")
	}
	return dto
}

type createGoalRequest struct {
	Name          string `json:"name"`
	TargetAmount  string `json:"targetAmount"`
	CurrentAmount string `json:"currentAmount"`
	TargetDate    string `json:"targetDate"`
	Priority      string `json:"priority"`
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	couple, err := coupleID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	goals, err := s.backend.ListGoals(r.Context(), couple)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]goalDTO, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalDTO(g))
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": out})
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	couple, err := coupleID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req createGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target, err := core.ParseDecimalToCents(strings.TrimSpace(req.TargetAmount))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid target amount")
		return
	}

	var current int64
	if strings.TrimSpace(req.CurrentAmount) != "" {
		current, err = core.ParseDecimalToCents(strings.TrimSpace(req.CurrentAmount))
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid current amount")
			return
		}
	}

	var targetDate time.Time
	if strings.TrimSpace(req.TargetDate) != "" {
		targetDate, err = time.Parse("2006-01-02", req.TargetDate)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid target date, expected YYYY-MM-DD")
			return
		}
	}

	priority := core.Priority(strings.ToUpper(strings.TrimSpace(req.Priority)))
	if req.Priority == "" {
		priority = core.PriorityMedium
	}

	g := core.SavingsGoal{
		CoupleID:      couple,
		Name:          sanitizeInput(req.Name),
		TargetAmount:  core.Money{Cents: target},
		CurrentAmount: core.Money{Cents: current},
		TargetDate:    targetDate,
		Priority:      priority,
	}

	id, err := s.transactions.CreateGoal(r.Context(), g)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	g.ID = id

	s.invalidateReports(r.Context(), couple)

	writeJSON(w, http.StatusCreated, toGoalDTO(g))
}

type updateGoalRequest struct {
	CurrentAmount string `json:"currentAmount"`
}

func (s *Server) handleUpdateGoalAmount(w http.ResponseWriter, r *http.Request) {
	couple, err := coupleID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid goal id")
		return
	}

	var req updateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(strings.TrimSpace(req.CurrentAmount))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid current amount")
		return
	}

	if err := s.transactions.UpdateGoalAmount(r.Context(), couple, id, core.Money{Cents: cents}); err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateReports(r.Context(), couple)

	writeJSON(w, http.StatusOK, map[string]any{"updated": id})
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	couple, err := coupleID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid goal id")
		return
	}

	if err := s.transactions.DeleteGoal(r.Context(), couple, id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateReports(r.Context(), couple)

	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	couple, err := coupleID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	progress, err := s.reports.GoalProgress(r.Context(), couple, time.Now())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"progress": progress})
}
