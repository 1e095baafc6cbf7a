package api

import (
	"net/http"

	"github.com/bornholm/weekplan/internal/core/port"
	"github.com/bornholm/weekplan/internal/core/service"
)

type Handler struct {
	taskManager *service.TaskManager
	jobRunner   port.JobRunner
	mux         *http.ServeMux
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func NewHandler(taskManager *service.TaskManager, jobRunner port.JobRunner) *Handler {
	h := &Handler{
		taskManager: taskManager,
		jobRunner:   jobRunner,
		mux:         &http.ServeMux{},
	}

	h.mux.HandleFunc("POST /tasks/schedule", h.handleSchedule)
	h.mux.HandleFunc("POST /tasks/pickup", h.handlePickup)
	h.mux.HandleFunc("GET /tasks/work", h.handleWork)

	h.mux.HandleFunc("PATCH /tasks", h.handleUpdateTask)
	h.mux.HandleFunc("GET /tasks", h.handleListTasks)
	h.mux.HandleFunc("POST /tasks", h.handleCreateTask)
	h.mux.HandleFunc("GET /tasks/{taskID}", h.handleGetTask)
	h.mux.HandleFunc("DELETE /tasks/{taskID}", h.handleDeleteTask)
	h.mux.HandleFunc("GET /tasks/{taskID}/activities", h.handleListActivities)
	h.mux.HandleFunc("POST /tasks/{taskID}/comments", h.handleAddComment)

	h.mux.HandleFunc("GET /goals", h.handleListGoals)
	h.mux.HandleFunc("POST /goals", h.handleCreateGoal)

	h.mux.HandleFunc("GET /jobs", h.handleListJobs)
	h.mux.HandleFunc("POST /jobs", h.handleScheduleJob)
	h.mux.HandleFunc("GET /jobs/{jobID}", h.handleGetJob)

	h.mux.HandleFunc("GET /backup", h.handleGenerateBackup)
	h.mux.HandleFunc("PUT /backup", h.handleRestoreBackup)

	return h
}

var _ http.Handler = &Handler{}
