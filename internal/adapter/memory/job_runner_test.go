package memory

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/bornholm/weekplan/internal/core/port"
	"github.com/pkg/errors"
)

const dummyJobType model.JobType = "dummy"

func TestJobRunner(t *testing.T) {
	runner := NewJobRunner(10, 24*time.Hour, time.Minute)

	var executed atomic.Int64

	runner.RegisterJob(dummyJobType, port.JobHandlerFunc(func(ctx context.Context, job model.Job, events chan port.JobEvent) error {
		events <- port.NewJobEvent(port.WithJobMessage("started"))
		executed.Add(1)
		events <- port.NewJobEvent(port.WithJobMessage("done"))
		return nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	total := int64(100)

	for range total {
		job := &dummyJob{id: model.NewJobID()}
		if err := runner.ScheduleJob(ctx, job); err != nil {
			t.Fatalf("%+v", errors.WithStack(err))
		}
	}

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("%+v", errors.WithStack(err))
	}

	if e, g := total, executed.Load(); e != g {
		t.Errorf("executed: expected %d, got %d", e, g)
	}

	headers, err := runner.ListJobs(context.Background())
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := int(total), len(headers); e != g {
		t.Errorf("len(headers): expected %d, got %d", e, g)
	}

	for _, header := range headers {
		state, err := runner.GetJobState(context.Background(), header.ID)
		if err != nil {
			t.Fatalf("%+v", errors.WithStack(err))
		}

		if state.ScheduledAt.IsZero() {
			t.Errorf("state.ScheduledAt should not be zero value")
		}

		if e, g := port.JobStatusSucceeded, state.Status; e != g {
			t.Errorf("state.Status: expected %v, got %v", e, g)
		}

		if e, g := "done", state.Message; e != g {
			t.Errorf("state.Message: expected %v, got %v", e, g)
		}
	}
}

func TestJobRunnerUnknownJobType(t *testing.T) {
	runner := NewJobRunner(1, time.Hour, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	job := &dummyJob{id: model.NewJobID()}
	if err := runner.ScheduleJob(ctx, job); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("%+v", errors.WithStack(err))
	}

	state, err := runner.GetJobState(context.Background(), job.ID())
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := port.JobStatusFailed, state.Status; e != g {
		t.Errorf("state.Status: expected %v, got %v", e, g)
	}

	if state.Error == nil {
		t.Errorf("state.Error should not be nil")
	}
}

func TestJobRunnerGetUnknownJob(t *testing.T) {
	runner := NewJobRunner(1, time.Hour, time.Minute)

	if _, err := runner.GetJobState(context.Background(), "unknown"); !errors.Is(err, port.ErrNotFound) {
		t.Errorf("expected port.ErrNotFound, got %v", err)
	}
}

type dummyJob struct {
	id model.JobID
}

// ID implements [model.Job].
func (j *dummyJob) ID() model.JobID {
	return j.id
}

// Type implements [model.Job].
func (j *dummyJob) Type() model.JobType {
	return dummyJobType
}

var _ model.Job = &dummyJob{}
