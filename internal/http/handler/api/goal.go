package api

import (
	"net/http"
)

type ListGoalsResponse struct {
	Goals []Goal `json:"goals"`
}

func (h *Handler) handleListGoals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	goals, err := h.taskManager.QueryGoals(ctx, getQueryPage(query, 0), getQueryLimit(query, 50))
	if err != nil {
		writeError(w, r, err, "could not query goals")
		return
	}

	res := ListGoalsResponse{
		Goals: make([]Goal, 0, len(goals)),
	}

	for _, g := range goals {
		res.Goals = append(res.Goals, toGoal(g))
	}

	writeJSON(w, r, http.StatusOK, res)
}

type CreateGoalRequest struct {
	Name string `json:"name"`
}

type GoalResponse struct {
	Goal Goal `json:"goal"`
}

func (h *Handler) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateGoalRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err, "could not decode request")
		return
	}

	goal, err := h.taskManager.CreateGoal(ctx, req.Name)
	if err != nil {
		writeError(w, r, err, "could not create goal")
		return
	}

	writeJSON(w, r, http.StatusCreated, GoalResponse{Goal: toGoal(goal)})
}
