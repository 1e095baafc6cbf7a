package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bornholm/go-x/slogx"
	"github.com/bornholm/weekplan/internal/adapter/memory/syncx"
	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/bornholm/weekplan/internal/core/port"
	"github.com/pkg/errors"
)

type jobEntry struct {
	Job   model.Job
	State port.JobState
}

type JobRunner struct {
	runningMutex *sync.Mutex
	runningCond  *sync.Cond
	running      bool

	jobs       syncx.Map[model.JobID, jobEntry]
	stateMutex sync.Mutex

	handlers  syncx.Map[model.JobType, port.JobHandler]
	semaphore chan struct{}

	// cancelFuncs stores cancel functions for running/pending jobs
	cancelFuncs syncx.Map[model.JobID, context.CancelFunc]

	cleanupDelay    time.Duration
	cleanupInterval time.Duration
}

// CancelJob implements [port.JobRunner].
func (r *JobRunner) CancelJob(ctx context.Context, id model.JobID) error {
	entry, exists := r.jobs.Load(id)
	if !exists {
		return errors.WithStack(port.ErrNotFound)
	}

	if entry.State.Status != port.JobStatusPending && entry.State.Status != port.JobStatusRunning {
		return errors.WithStack(port.ErrCanceled)
	}

	cancelFn, exists := r.cancelFuncs.Load(id)
	if !exists {
		return errors.WithStack(port.ErrCanceled)
	}

	cancelFn()

	r.updateState(entry.Job, func(s *port.JobState) {
		s.Error = errors.WithStack(port.ErrCanceled)
		s.Status = port.JobStatusFailed
		s.FinishedAt = time.Now()
	})

	r.cancelFuncs.Delete(id)

	return nil
}

// Run implements [port.JobRunner].
func (r *JobRunner) Run(ctx context.Context) error {
	r.runningMutex.Lock()
	r.running = true
	r.runningCond.Broadcast()
	r.runningMutex.Unlock()

	go func() {
		ticker := time.NewTicker(r.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.cleanup(ctx)
			}
		}
	}()

	<-ctx.Done()

	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (r *JobRunner) cleanup(ctx context.Context) {
	slog.DebugContext(ctx, "running job cleaner")

	var expired []model.JobID

	r.jobs.Range(func(id model.JobID, entry jobEntry) bool {
		if entry.State.FinishedAt.IsZero() || !time.Now().After(entry.State.FinishedAt.Add(r.cleanupDelay)) {
			return true
		}

		expired = append(expired, id)

		return true
	})

	for _, id := range expired {
		slog.DebugContext(ctx, "deleting expired job", slog.String("jobID", string(id)))
		r.jobs.Delete(id)
		r.cancelFuncs.Delete(id)
	}
}

// ListJobs implements [port.JobRunner].
func (r *JobRunner) ListJobs(ctx context.Context) ([]port.JobStateHeader, error) {
	headers := make([]port.JobStateHeader, 0)
	r.jobs.Range(func(id model.JobID, entry jobEntry) bool {
		headers = append(headers, entry.State.JobStateHeader)
		return true
	})
	return headers, nil
}

// RegisterJob implements [port.JobRunner].
func (r *JobRunner) RegisterJob(jobType model.JobType, handler port.JobHandler) {
	r.handlers.Store(jobType, handler)
}

// ScheduleJob implements [port.JobRunner].
func (r *JobRunner) ScheduleJob(ctx context.Context, job model.Job) error {
	jobID := job.ID()

	ctx = slogx.WithAttrs(ctx,
		slog.String("jobID", string(jobID)),
		slog.String("jobType", string(job.Type())),
	)

	r.updateState(job, func(s *port.JobState) {
		s.ID = jobID
		s.ScheduledAt = time.Now()
		s.Status = port.JobStatusPending
		s.Type = job.Type()
	})

	jobCtx, cancelFn := context.WithCancel(context.Background())
	r.cancelFuncs.Store(jobID, cancelFn)

	go func() {
		defer func() {
			r.cancelFuncs.Delete(jobID)
			cancelFn()

			if recovered := recover(); recovered != nil {
				err, ok := recovered.(error)
				if !ok {
					err = errors.Errorf("%+v", recovered)
				}

				slog.ErrorContext(ctx, "recovered panic while running job", slog.Any("error", errors.WithStack(err)))

				r.updateState(job, func(s *port.JobState) {
					s.Error = errors.WithStack(err)
					s.Status = port.JobStatusFailed
					s.FinishedAt = time.Now()
				})
			}
		}()

		r.runningMutex.Lock()
		for !r.running {
			r.runningCond.Wait()
		}
		r.runningMutex.Unlock()

		select {
		case r.semaphore <- struct{}{}:
		case <-jobCtx.Done():
			return
		}
		defer func() {
			<-r.semaphore
		}()

		handler, exists := r.handlers.Load(job.Type())
		if !exists {
			r.updateState(job, func(s *port.JobState) {
				s.Error = errors.Errorf("no handler registered for job type '%s'", job.Type())
				s.Status = port.JobStatusFailed
				s.FinishedAt = time.Now()
			})

			return
		}

		r.updateState(job, func(s *port.JobState) {
			s.Status = port.JobStatusRunning
		})

		events := make(chan port.JobEvent)

		var eventsWg sync.WaitGroup
		eventsWg.Add(1)
		go func() {
			defer eventsWg.Done()
			for e := range events {
				r.updateState(job, func(s *port.JobState) {
					if e.Message != nil {
						s.Message = *e.Message
					}
				})
			}
		}()

		start := time.Now()

		jobCtx := slogx.WithAttrs(jobCtx,
			slog.String("jobID", string(jobID)),
			slog.String("jobType", string(job.Type())),
		)

		slog.DebugContext(jobCtx, "executing job")

		err := handler.Handle(jobCtx, job, events)

		// The events goroutine must be drained before the final state is written
		close(events)
		eventsWg.Wait()

		if errors.Is(err, port.ErrCanceled) || errors.Is(err, context.Canceled) {
			slog.DebugContext(ctx, "job was canceled")

			r.updateState(job, func(s *port.JobState) {
				s.Error = errors.WithStack(port.ErrCanceled)
				s.Status = port.JobStatusFailed
				s.FinishedAt = time.Now()
			})

			return
		}

		if err != nil {
			err = errors.WithStack(err)
			slog.ErrorContext(ctx, "job failed", slogx.Error(err))

			r.updateState(job, func(s *port.JobState) {
				s.Error = err
				s.Status = port.JobStatusFailed
				s.FinishedAt = time.Now()
			})
			return
		}

		slog.DebugContext(ctx, "job finished", slog.Duration("duration", time.Since(start)))

		r.updateState(job, func(s *port.JobState) {
			s.Status = port.JobStatusSucceeded
			s.FinishedAt = time.Now()
		})
	}()

	return nil
}

func (r *JobRunner) updateState(job model.Job, fn func(s *port.JobState)) {
	r.stateMutex.Lock()
	defer r.stateMutex.Unlock()

	entry, _ := r.jobs.LoadOrStore(job.ID(), jobEntry{
		Job: job,
		State: port.JobState{
			JobStateHeader: port.JobStateHeader{
				ID:   job.ID(),
				Type: job.Type(),
			},
		},
	})

	fn(&entry.State)

	r.jobs.Store(job.ID(), entry)
}

// GetJobState implements [port.JobRunner].
func (r *JobRunner) GetJobState(ctx context.Context, id model.JobID) (*port.JobState, error) {
	entry, exists := r.jobs.Load(id)
	if !exists {
		return nil, errors.WithStack(port.ErrNotFound)
	}

	return &entry.State, nil
}

func NewJobRunner(parallelism int, cleanupDelay time.Duration, cleanupInterval time.Duration) *JobRunner {
	runningMutex := &sync.Mutex{}
	return &JobRunner{
		runningMutex:    runningMutex,
		runningCond:     sync.NewCond(runningMutex),
		running:         false,
		semaphore:       make(chan struct{}, parallelism),
		cleanupDelay:    cleanupDelay,
		cleanupInterval: cleanupInterval,
	}
}

var _ port.JobRunner = &JobRunner{}
