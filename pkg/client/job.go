package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/bornholm/weekplan/internal/http/handler/api"
	"github.com/pkg/errors"
)

func (c *Client) ScheduleJob(ctx context.Context, jobType model.JobType, weeklyBudget int) (*api.Job, error) {
	req := api.ScheduleJobRequest{
		Type:         jobType,
		WeeklyBudget: weeklyBudget,
	}

	var res api.JobResponse
	if err := c.jsonRequest(ctx, http.MethodPost, "/jobs", req, &res); err != nil {
		return nil, errors.WithStack(err)
	}

	return &res.Job, nil
}

func (c *Client) GetJob(ctx context.Context, jobID model.JobID) (*api.Job, error) {
	var res api.JobResponse
	if err := c.jsonRequest(ctx, http.MethodGet, fmt.Sprintf("/jobs/%s", jobID), nil, &res); err != nil {
		return nil, errors.WithStack(err)
	}

	return &res.Job, nil
}

type WaitForOptions struct {
	PollInterval time.Duration
}

type WaitForOptionFunc func(opts *WaitForOptions)

func WithWaitForPollInterval(interval time.Duration) WaitForOptionFunc {
	return func(opts *WaitForOptions) {
		opts.PollInterval = interval
	}
}

func NewWaitForOptions(funcs ...WaitForOptionFunc) *WaitForOptions {
	opts := &WaitForOptions{
		PollInterval: time.Second * 2,
	}

	for _, fn := range funcs {
		fn(opts)
	}

	return opts
}

// WaitFor polls the job state until the job is finished or ctx is done.
func (c *Client) WaitFor(ctx context.Context, jobID model.JobID, funcs ...WaitForOptionFunc) (*api.Job, error) {
	opts := NewWaitForOptions(funcs...)

	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		job, err := c.GetJob(ctx, jobID)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		if !job.FinishedAt.IsZero() {
			return job, nil
		}

		select {
		case <-ctx.Done():
			return nil, errors.WithStack(ctx.Err())
		case <-ticker.C:
		}
	}
}
