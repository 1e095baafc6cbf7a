package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/bornholm/weekplan/internal/http/handler/api"
	"github.com/pkg/errors"
)

type ListTasksOptions struct {
	Statuses []model.TaskStatus
	GoalID   model.GoalID
	Page     int
	Limit    int
}

func (c *Client) ListTasks(ctx context.Context, opts ListTasksOptions) ([]api.Task, error) {
	query := url.Values{}
	for _, s := range opts.Statuses {
		query.Add("status", string(s))
	}

	if opts.GoalID != "" {
		query.Set("goal", string(opts.GoalID))
	}

	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}

	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}

	path := "/tasks"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var res api.ListTasksResponse
	if err := c.jsonRequest(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, errors.WithStack(err)
	}

	return res.Tasks, nil
}

func (c *Client) GetTask(ctx context.Context, taskID model.TaskID) (*api.Task, error) {
	var res api.TaskResponse
	if err := c.jsonRequest(ctx, http.MethodGet, fmt.Sprintf("/tasks/%s", taskID), nil, &res); err != nil {
		return nil, errors.WithStack(err)
	}

	return &res.Task, nil
}

func (c *Client) CreateTask(ctx context.Context, fields api.TaskFields) (*api.Task, error) {
	var res api.TaskResponse
	if err := c.jsonRequest(ctx, http.MethodPost, "/tasks", api.CreateTaskRequest{TaskFields: fields}, &res); err != nil {
		return nil, errors.WithStack(err)
	}

	return &res.Task, nil
}

// UpdateTask changes the task fields then its status. A rejected status
// change is reported as an [APIError] with status 422.
func (c *Client) UpdateTask(ctx context.Context, taskID model.TaskID, fields api.TaskFields) (*api.Task, error) {
	req := api.UpdateTaskRequest{
		TaskID:     taskID,
		TaskFields: fields,
	}

	var res api.TaskResponse
	if err := c.jsonRequest(ctx, http.MethodPatch, "/tasks", req, &res); err != nil {
		return nil, errors.WithStack(err)
	}

	return &res.Task, nil
}

func (c *Client) UpdateStatus(ctx context.Context, taskID model.TaskID, status model.TaskStatus) (*api.Task, error) {
	task, err := c.UpdateTask(ctx, taskID, api.TaskFields{Status: &status})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return task, nil
}

func (c *Client) DeleteTask(ctx context.Context, taskID model.TaskID) error {
	if err := c.request(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%s", taskID), nil, nil, nil); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (c *Client) ListActivities(ctx context.Context, taskID model.TaskID) ([]api.Activity, error) {
	var res api.ListActivitiesResponse
	if err := c.jsonRequest(ctx, http.MethodGet, fmt.Sprintf("/tasks/%s/activities", taskID), nil, &res); err != nil {
		return nil, errors.WithStack(err)
	}

	return res.Activities, nil
}

func (c *Client) AddComment(ctx context.Context, taskID model.TaskID, body string) (*api.Comment, error) {
	var res api.CommentResponse
	if err := c.jsonRequest(ctx, http.MethodPost, fmt.Sprintf("/tasks/%s/comments", taskID), api.AddCommentRequest{Body: body}, &res); err != nil {
		return nil, errors.WithStack(err)
	}

	return &res.Comment, nil
}

func (c *Client) ListGoals(ctx context.Context) ([]api.Goal, error) {
	var res api.ListGoalsResponse
	if err := c.jsonRequest(ctx, http.MethodGet, "/goals", nil, &res); err != nil {
		return nil, errors.WithStack(err)
	}

	return res.Goals, nil
}

func (c *Client) CreateGoal(ctx context.Context, name string) (*api.Goal, error) {
	var res api.GoalResponse
	if err := c.jsonRequest(ctx, http.MethodPost, "/goals", api.CreateGoalRequest{Name: name}, &res); err != nil {
		return nil, errors.WithStack(err)
	}

	return &res.Goal, nil
}
