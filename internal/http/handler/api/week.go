package api

import (
	"net/http"
	"strconv"

	"github.com/bornholm/weekplan/internal/core/service"
	"github.com/pkg/errors"
)

type ScheduleResponse struct {
	Promoted         int       `json:"promoted"`
	Demoted          int       `json:"demoted"`
	PromotedTasks    []TaskRef `json:"promotedTasks"`
	DemotedTasks     []TaskRef `json:"demotedTasks"`
	WeeklyBudget     int       `json:"weeklyBudget"`
	UsedMinutes      int       `json:"usedMinutes"`
	RemainingMinutes int       `json:"remainingMinutes"`
}

// handleSchedule runs the weekly allocation. A missing or non numeric
// weeklyBudget falls back on the configured budget, an explicit value lower
// than one minute is rejected.
func (h *Handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()

	if budget, err := strconv.Atoi(query.Get("weeklyBudget")); err == nil && budget <= 0 {
		writeError(w, r, errors.Wrapf(service.ErrInvalidInput, "weekly budget must be positive, got '%d'", budget), "invalid request")
		return
	}

	weeklyBudget := getQueryInt(query, "weeklyBudget", 0)

	report, err := h.taskManager.Schedule(ctx, weeklyBudget)
	if err != nil {
		writeError(w, r, err, "could not schedule week")
		return
	}

	writeJSON(w, r, http.StatusOK, ScheduleResponse{
		Promoted:         len(report.Promoted),
		Demoted:          len(report.Demoted),
		PromotedTasks:    toTaskRefs(report.Promoted),
		DemotedTasks:     toTaskRefs(report.Demoted),
		WeeklyBudget:     report.WeeklyBudgetMinutes,
		UsedMinutes:      report.UsedMinutes,
		RemainingMinutes: report.RemainingMinutes,
	})
}

type PickupResponse struct {
	Task    *Task  `json:"task"`
	Message string `json:"message,omitempty"`
}

const (
	messageAlreadyInProgress = "a task is already in progress"
	messageEmptyQueue        = "no task to pick up"
)

func (h *Handler) handlePickup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report, err := h.taskManager.Pickup(ctx)
	if err != nil {
		writeError(w, r, err, "could not pick up task")
		return
	}

	var res PickupResponse

	switch {
	case report.Task != nil:
		task := toTask(*report.Task)
		res.Task = &task
	case len(report.InProgress) > 0:
		res.Message = messageAlreadyInProgress
	default:
		res.Message = messageEmptyQueue
	}

	writeJSON(w, r, http.StatusOK, res)
}

type WorkResponse struct {
	InProgress []WorkTask `json:"inProgress"`
	NextPickup *WorkTask  `json:"nextPickup"`
}

func (h *Handler) handleWork(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report, err := h.taskManager.Work(ctx)
	if err != nil {
		writeError(w, r, err, "could not retrieve work")
		return
	}

	res := WorkResponse{
		InProgress: make([]WorkTask, 0, len(report.InProgress)),
	}

	for _, t := range report.InProgress {
		res.InProgress = append(res.InProgress, toWorkTask(t))
	}

	if report.NextPickup != nil {
		next := toWorkTask(*report.NextPickup)
		res.NextPickup = &next
	}

	writeJSON(w, r, http.StatusOK, res)
}

