package api

import (
	"net/http"

	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/bornholm/weekplan/internal/core/port"
	"github.com/bornholm/weekplan/internal/core/service"
	httpCtx "github.com/bornholm/weekplan/internal/http/context"
	"github.com/pkg/errors"
)

type UpdateTaskRequest struct {
	TaskID model.TaskID `json:"taskId"`
	TaskFields
}

type TaskResponse struct {
	Task Task `json:"task"`
}

func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req UpdateTaskRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err, "could not decode request")
		return
	}

	if req.TaskID == "" {
		writeError(w, r, errors.Wrap(service.ErrInvalidInput, "missing task id"), "invalid request")
		return
	}

	updates, err := req.toUpdates()
	if err != nil {
		writeError(w, r, err, "invalid request")
		return
	}

	task, err := h.taskManager.UpdateTask(ctx, req.TaskID, updates)
	if err != nil {
		writeError(w, r, err, "could not update task")
		return
	}

	writeJSON(w, r, http.StatusOK, TaskResponse{Task: toTask(task)})
}

type CreateTaskRequest struct {
	TaskFields
}

func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateTaskRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err, "could not decode request")
		return
	}

	var name string
	if req.Name != nil {
		name = *req.Name
	}

	updates, err := req.toUpdates()
	if err != nil {
		writeError(w, r, err, "invalid request")
		return
	}

	updates.Name = nil

	task, err := h.taskManager.CreateTask(ctx, name, updates)
	if err != nil {
		writeError(w, r, err, "could not create task")
		return
	}

	writeJSON(w, r, http.StatusCreated, TaskResponse{Task: toTask(task)})
}

type ListTasksResponse struct {
	Tasks []Task `json:"tasks"`
}

func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	page := getQueryPage(query, 0)
	limit := getQueryLimit(query, 50)

	opts := port.QueryTasksOptions{
		Page:  &page,
		Limit: &limit,
	}

	for _, raw := range query["status"] {
		status, err := model.ParseTaskStatus(raw)
		if err != nil {
			writeError(w, r, err, "invalid status filter")
			return
		}

		opts.Statuses = append(opts.Statuses, status)
	}

	if rawGoalID := query.Get("goal"); rawGoalID != "" {
		goalID := model.GoalID(rawGoalID)
		opts.GoalID = &goalID
	}

	tasks, err := h.taskManager.QueryTasks(ctx, opts)
	if err != nil {
		writeError(w, r, err, "could not query tasks")
		return
	}

	writeJSON(w, r, http.StatusOK, ListTasksResponse{Tasks: toTasks(tasks)})
}

func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	taskID := model.TaskID(r.PathValue("taskID"))

	task, err := h.taskManager.GetTask(ctx, taskID)
	if err != nil {
		writeError(w, r, err, "could not retrieve task")
		return
	}

	writeJSON(w, r, http.StatusOK, TaskResponse{Task: toTask(task)})
}

func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	taskID := model.TaskID(r.PathValue("taskID"))

	if err := h.taskManager.DeleteTask(ctx, taskID); err != nil {
		writeError(w, r, err, "could not delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type ListActivitiesResponse struct {
	Activities []Activity `json:"activities"`
}

func (h *Handler) handleListActivities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	taskID := model.TaskID(r.PathValue("taskID"))
	query := r.URL.Query()

	activities, err := h.taskManager.QueryActivities(ctx, taskID, getQueryPage(query, 0), getQueryLimit(query, 50))
	if err != nil {
		writeError(w, r, err, "could not query activities")
		return
	}

	res := ListActivitiesResponse{
		Activities: make([]Activity, 0, len(activities)),
	}

	for _, a := range activities {
		res.Activities = append(res.Activities, toActivity(a))
	}

	writeJSON(w, r, http.StatusOK, res)
}

type AddCommentRequest struct {
	Author string `json:"author,omitempty"`
	Body   string `json:"body"`
}

type CommentResponse struct {
	Comment Comment `json:"comment"`
}

func (h *Handler) handleAddComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	taskID := model.TaskID(r.PathValue("taskID"))

	var req AddCommentRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err, "could not decode request")
		return
	}

	author := req.Author
	if username := httpCtx.Username(ctx); username != "" {
		author = username
	}

	comment, err := h.taskManager.AddComment(ctx, taskID, author, req.Body)
	if err != nil {
		writeError(w, r, err, "could not add comment")
		return
	}

	writeJSON(w, r, http.StatusCreated, CommentResponse{Comment: toComment(comment)})
}
