package api

import (
	"net/http"
	"slices"
	"time"

	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/bornholm/weekplan/internal/core/port"
	"github.com/bornholm/weekplan/internal/core/service"
	"github.com/bornholm/weekplan/internal/job/week"
	"github.com/pkg/errors"
)

type JobHeader struct {
	ID          model.JobID    `json:"id"`
	Type        model.JobType  `json:"type"`
	ScheduledAt time.Time      `json:"scheduledAt"`
	Status      port.JobStatus `json:"status"`
}

type Job struct {
	JobHeader
	FinishedAt time.Time `json:"finishedAt"`
	Error      string    `json:"error,omitempty"`
	Message    string    `json:"message"`
}

type ListJobsResponse struct {
	Jobs []JobHeader `json:"jobs"`
}

func (h *Handler) handleListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	headers, err := h.jobRunner.ListJobs(ctx)
	if err != nil {
		writeError(w, r, err, "could not list jobs")
		return
	}

	slices.SortFunc(headers, func(h1, h2 port.JobStateHeader) int {
		return h1.ScheduledAt.Compare(h2.ScheduledAt)
	})

	jobs := make([]JobHeader, 0, len(headers))
	for _, h := range headers {
		jobs = append(jobs, JobHeader{ID: h.ID, Type: h.Type, ScheduledAt: h.ScheduledAt, Status: h.Status})
	}

	writeJSON(w, r, http.StatusOK, ListJobsResponse{Jobs: jobs})
}

type ScheduleJobRequest struct {
	Type         model.JobType `json:"type"`
	WeeklyBudget int           `json:"weeklyBudget,omitempty"`
}

type JobResponse struct {
	Job Job `json:"job"`
}

func (h *Handler) handleScheduleJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ScheduleJobRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err, "could not decode request")
		return
	}

	if req.WeeklyBudget < 0 {
		writeError(w, r, errors.Wrapf(service.ErrInvalidInput, "weekly budget must be positive, got '%d'", req.WeeklyBudget), "invalid request")
		return
	}

	var job model.Job
	switch req.Type {
	case week.JobTypeSchedule:
		job = week.NewScheduleJob(req.WeeklyBudget)
	case week.JobTypePickup:
		job = week.NewPickupJob()
	default:
		writeError(w, r, errors.Wrapf(service.ErrInvalidInput, "unknown job type '%s'", req.Type), "invalid request")
		return
	}

	if err := h.jobRunner.ScheduleJob(ctx, job); err != nil {
		writeError(w, r, err, "could not schedule job")
		return
	}

	h.writeJobState(w, r, job.ID(), http.StatusAccepted)
}

func (h *Handler) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := model.JobID(r.PathValue("jobID"))
	h.writeJobState(w, r, jobID, http.StatusOK)
}

func (h *Handler) writeJobState(w http.ResponseWriter, r *http.Request, jobID model.JobID, status int) {
	state, err := h.jobRunner.GetJobState(r.Context(), jobID)
	if err != nil {
		writeError(w, r, err, "could not retrieve job state")
		return
	}

	res := JobResponse{
		Job: Job{
			JobHeader: JobHeader{
				ID:          state.ID,
				Type:        state.Type,
				ScheduledAt: state.ScheduledAt,
				Status:      state.Status,
			},
			FinishedAt: state.FinishedAt,
			Message:    state.Message,
		},
	}

	if state.Error != nil {
		res.Job.Error = state.Error.Error()
	}

	writeJSON(w, r, status, res)
}
