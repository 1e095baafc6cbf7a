package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bornholm/weekplan/internal/http/handler/api"
	"github.com/pkg/errors"
)

// Schedule runs the weekly allocation. A budget lower or equal to zero
// lets the server use its configured budget.
func (c *Client) Schedule(ctx context.Context, weeklyBudget int) (*api.ScheduleResponse, error) {
	path := "/tasks/schedule"
	if weeklyBudget > 0 {
		path = fmt.Sprintf("%s?weeklyBudget=%d", path, weeklyBudget)
	}

	var res api.ScheduleResponse
	if err := c.jsonRequest(ctx, http.MethodPost, path, nil, &res); err != nil {
		return nil, errors.WithStack(err)
	}

	return &res, nil
}

func (c *Client) Pickup(ctx context.Context) (*api.PickupResponse, error) {
	var res api.PickupResponse
	if err := c.jsonRequest(ctx, http.MethodPost, "/tasks/pickup", nil, &res); err != nil {
		return nil, errors.WithStack(err)
	}

	return &res, nil
}

func (c *Client) Work(ctx context.Context) (*api.WorkResponse, error) {
	var res api.WorkResponse
	if err := c.jsonRequest(ctx, http.MethodGet, "/tasks/work", nil, &res); err != nil {
		return nil, errors.WithStack(err)
	}

	return &res, nil
}
