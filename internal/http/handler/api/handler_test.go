package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	gormAdapter "github.com/bornholm/weekplan/internal/adapter/gorm"
	"github.com/bornholm/weekplan/internal/core/model"
	"github.com/bornholm/weekplan/internal/core/port"
	"github.com/bornholm/weekplan/internal/core/service"
	"github.com/bornholm/weekplan/internal/job/week"
	"github.com/davecgh/go-spew/spew"
	"github.com/ncruces/go-sqlite3/gormlite"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "github.com/ncruces/go-sqlite3/embed"
)

// Wednesday, in the week [2026-10-12, 2026-10-19)
var testNow = time.Date(2026, time.October, 14, 9, 30, 0, 0, time.UTC)

func TestHandlerSchedule(t *testing.T) {
	handler, store, _ := newTestHandler(t)

	high := seedTask(t, store, "Prepare demo", model.TaskStatusToBeScheduled, model.TaskPriorityHigh, 45, nil)
	seedTask(t, store, "Sort archives", model.TaskStatusToBeScheduled, model.TaskPriorityLow, 45, nil)

	res := serve(handler, http.MethodPost, "/tasks/schedule?weeklyBudget=60", nil)

	if e, g := http.StatusOK, res.Code; e != g {
		t.Fatalf("res.Code: expected %v, got %v\n%s", e, g, res.Body.String())
	}

	var body ScheduleResponse
	decodeResponse(t, res, &body)

	if e, g := 1, body.Promoted; e != g {
		t.Fatalf("body.Promoted: expected %v, got %v\n%s", e, g, spew.Sdump(body))
	}

	if e, g := high.ID, body.PromotedTasks[0].ID; e != g {
		t.Errorf("body.PromotedTasks[0].ID: expected %v, got %v", e, g)
	}

	if e, g := 60, body.WeeklyBudget; e != g {
		t.Errorf("body.WeeklyBudget: expected %v, got %v", e, g)
	}

	if e, g := 45, body.UsedMinutes; e != g {
		t.Errorf("body.UsedMinutes: expected %v, got %v", e, g)
	}

	if e, g := 15, body.RemainingMinutes; e != g {
		t.Errorf("body.RemainingMinutes: expected %v, got %v", e, g)
	}

	if body.DemotedTasks == nil {
		t.Errorf("body.DemotedTasks should be an empty list")
	}
}

func TestHandlerScheduleDefaultBudget(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	res := serve(handler, http.MethodPost, "/tasks/schedule?weeklyBudget=lots", nil)

	if e, g := http.StatusOK, res.Code; e != g {
		t.Fatalf("res.Code: expected %v, got %v\n%s", e, g, res.Body.String())
	}

	var body ScheduleResponse
	decodeResponse(t, res, &body)

	if e, g := 600, body.WeeklyBudget; e != g {
		t.Errorf("body.WeeklyBudget: expected %v, got %v", e, g)
	}

	for _, budget := range []string{"0", "-30", "00"} {
		res := serve(handler, http.MethodPost, "/tasks/schedule?weeklyBudget="+budget, nil)

		if e, g := http.StatusBadRequest, res.Code; e != g {
			t.Errorf("weeklyBudget=%s: expected status %v, got %v\n%s", budget, e, g, res.Body.String())
		}
	}
}

func TestHandlerPickup(t *testing.T) {
	handler, store, _ := newTestHandler(t)

	res := serve(handler, http.MethodPost, "/tasks/pickup", nil)

	var empty PickupResponse
	decodeResponse(t, res, &empty)

	if empty.Task != nil {
		t.Errorf("empty.Task: expected nil, got %s", spew.Sdump(empty.Task))
	}

	if e, g := messageEmptyQueue, empty.Message; e != g {
		t.Errorf("empty.Message: expected '%v', got '%v'", e, g)
	}

	dueDate := civil.DateOf(testNow)
	task := seedTask(t, store, "Write report", model.TaskStatusToDoThisWeek, model.TaskPriorityMedium, 60, &dueDate)

	res = serve(handler, http.MethodPost, "/tasks/pickup", nil)

	var picked PickupResponse
	decodeResponse(t, res, &picked)

	if picked.Task == nil {
		t.Fatalf("picked.Task should not be nil")
	}

	if e, g := task.ID, picked.Task.ID; e != g {
		t.Errorf("picked.Task.ID: expected %v, got %v", e, g)
	}

	if e, g := model.TaskStatusInProgress, picked.Task.Status; e != g {
		t.Errorf("picked.Task.Status: expected %v, got %v", e, g)
	}

	res = serve(handler, http.MethodPost, "/tasks/pickup", nil)

	var busy PickupResponse
	decodeResponse(t, res, &busy)

	if e, g := messageAlreadyInProgress, busy.Message; e != g {
		t.Errorf("busy.Message: expected '%v', got '%v'", e, g)
	}

	res = serve(handler, http.MethodGet, "/tasks/work", nil)

	var work WorkResponse
	decodeResponse(t, res, &work)

	if e, g := 1, len(work.InProgress); e != g {
		t.Fatalf("len(work.InProgress): expected %v, got %v", e, g)
	}

	if work.NextPickup != nil {
		t.Errorf("work.NextPickup: expected nil, got %s", spew.Sdump(work.NextPickup))
	}
}

func TestHandlerUpdateTask(t *testing.T) {
	handler, store, _ := newTestHandler(t)

	task := seedTask(t, store, "Undated", model.TaskStatusBacklog, model.TaskPriorityMedium, 30, nil)

	type testCase struct {
		Body           string
		ExpectedStatus int
		ExpectedError  string
	}

	testCases := []testCase{
		{
			Body:           `{"taskId":"` + string(task.ID) + `","status":"ToDoThisWeek"}`,
			ExpectedStatus: http.StatusUnprocessableEntity,
			ExpectedError:  "task has no due date",
		},
		{
			Body:           `{"taskId":"unknown","status":"Blocked"}`,
			ExpectedStatus: http.StatusNotFound,
		},
		{
			Body:           `{"taskId":"` + string(task.ID) + `","status":"Someday"}`,
			ExpectedStatus: http.StatusBadRequest,
		},
		{
			Body:           `{"status":"Blocked"}`,
			ExpectedStatus: http.StatusBadRequest,
		},
		{
			Body:           `{"taskId":"` + string(task.ID) + `","status":"Blocked"}`,
			ExpectedStatus: http.StatusOK,
		},
		{
			Body:           `{"taskId":"` + string(task.ID) + `","status":"ToDoThisWeek","dueDate":"2026-10-16"}`,
			ExpectedStatus: http.StatusOK,
		},
		{
			Body:           `{"taskId":"` + string(task.ID) + `","status":"ToDoThisWeek","clearDueDate":true}`,
			ExpectedStatus: http.StatusUnprocessableEntity,
			ExpectedError:  "task has no due date",
		},
		{
			Body:           `{"taskId":"` + string(task.ID) + `","clearDueDate":true}`,
			ExpectedStatus: http.StatusUnprocessableEntity,
			ExpectedError:  "must keep its due date",
		},
	}

	for i, tc := range testCases {
		res := serve(handler, http.MethodPatch, "/tasks", strings.NewReader(tc.Body))

		if e, g := tc.ExpectedStatus, res.Code; e != g {
			t.Errorf("[%d] res.Code: expected %v, got %v\n%s", i, e, g, res.Body.String())
			continue
		}

		if tc.ExpectedError != "" {
			var body ErrorResponse
			decodeResponse(t, res, &body)

			if !strings.Contains(body.Error, tc.ExpectedError) {
				t.Errorf("[%d] body.Error: expected to contain '%v', got '%v'", i, tc.ExpectedError, body.Error)
			}
		}
	}

	updated, err := store.GetTaskByID(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := model.TaskStatusToDoThisWeek, updated.Status; e != g {
		t.Errorf("updated.Status: expected %v, got %v", e, g)
	}

	if !updated.HasDueDate() {
		t.Errorf("updated task should have kept its due date")
	}
}

func TestHandlerTasksCRUD(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	res := serve(handler, http.MethodPost, "/goals", strings.NewReader(`{"name":"Health"}`))
	if e, g := http.StatusCreated, res.Code; e != g {
		t.Fatalf("res.Code: expected %v, got %v\n%s", e, g, res.Body.String())
	}

	var goal GoalResponse
	decodeResponse(t, res, &goal)

	res = serve(handler, http.MethodPost, "/tasks", strings.NewReader(`{"name":"Book appointment","priority":"High","estimatedMinutes":20,"goalId":"`+string(goal.Goal.ID)+`"}`))
	if e, g := http.StatusCreated, res.Code; e != g {
		t.Fatalf("res.Code: expected %v, got %v\n%s", e, g, res.Body.String())
	}

	var created TaskResponse
	decodeResponse(t, res, &created)

	if e, g := model.TaskStatusBacklog, created.Task.Status; e != g {
		t.Errorf("created.Task.Status: expected %v, got %v", e, g)
	}

	res = serve(handler, http.MethodPost, "/tasks/"+string(created.Task.ID)+"/comments", strings.NewReader(`{"body":"Call before noon"}`))
	if e, g := http.StatusCreated, res.Code; e != g {
		t.Fatalf("res.Code: expected %v, got %v\n%s", e, g, res.Body.String())
	}

	res = serve(handler, http.MethodGet, "/tasks?status=Backlog", nil)

	var list ListTasksResponse
	decodeResponse(t, res, &list)

	if e, g := 1, len(list.Tasks); e != g {
		t.Fatalf("len(list.Tasks): expected %v, got %v", e, g)
	}

	res = serve(handler, http.MethodGet, "/tasks?status=Whenever", nil)
	if e, g := http.StatusBadRequest, res.Code; e != g {
		t.Errorf("res.Code: expected %v, got %v", e, g)
	}

	res = serve(handler, http.MethodDelete, "/tasks/"+string(created.Task.ID), nil)
	if e, g := http.StatusNoContent, res.Code; e != g {
		t.Fatalf("res.Code: expected %v, got %v", e, g)
	}

	res = serve(handler, http.MethodGet, "/tasks/"+string(created.Task.ID), nil)
	if e, g := http.StatusNotFound, res.Code; e != g {
		t.Errorf("res.Code: expected %v, got %v", e, g)
	}
}

func TestHandlerJobs(t *testing.T) {
	handler, _, jobRunner := newTestHandler(t)

	res := serve(handler, http.MethodPost, "/jobs", strings.NewReader(`{"type":"schedule","weeklyBudget":120}`))
	if e, g := http.StatusAccepted, res.Code; e != g {
		t.Fatalf("res.Code: expected %v, got %v\n%s", e, g, res.Body.String())
	}

	var scheduled JobResponse
	decodeResponse(t, res, &scheduled)

	if e, g := week.JobTypeSchedule, scheduled.Job.Type; e != g {
		t.Errorf("scheduled.Job.Type: expected %v, got %v", e, g)
	}

	job, exists := jobRunner.jobs[scheduled.Job.ID]
	if !exists {
		t.Fatalf("job '%s' should have been scheduled", scheduled.Job.ID)
	}

	if e, g := 120, job.(*week.ScheduleJob).WeeklyBudget(); e != g {
		t.Errorf("job.WeeklyBudget(): expected %v, got %v", e, g)
	}

	res = serve(handler, http.MethodPost, "/jobs", strings.NewReader(`{"type":"reindex"}`))
	if e, g := http.StatusBadRequest, res.Code; e != g {
		t.Errorf("res.Code: expected %v, got %v", e, g)
	}

	res = serve(handler, http.MethodPost, "/jobs", strings.NewReader(`{"type":"schedule","weeklyBudget":-60}`))
	if e, g := http.StatusBadRequest, res.Code; e != g {
		t.Errorf("res.Code: expected %v, got %v", e, g)
	}

	res = serve(handler, http.MethodGet, "/jobs/unknown", nil)
	if e, g := http.StatusNotFound, res.Code; e != g {
		t.Errorf("res.Code: expected %v, got %v", e, g)
	}
}

func TestHandlerBackup(t *testing.T) {
	handler, store, _ := newTestHandler(t)

	task := seedTask(t, store, "Keep me", model.TaskStatusBacklog, model.TaskPriorityMedium, 30, nil)

	res := serve(handler, http.MethodGet, "/backup", nil)
	if e, g := http.StatusOK, res.Code; e != g {
		t.Fatalf("res.Code: expected %v, got %v", e, g)
	}

	backup := res.Body.Bytes()

	target, targetStore, _ := newTestHandler(t)

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)

	part, err := writer.CreateFormFile("file", "backup.bin.gz")
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if _, err := part.Write(backup); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	req := httptest.NewRequest(http.MethodPut, "/backup", &form)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	res = httptest.NewRecorder()
	target.ServeHTTP(res, req)

	if e, g := http.StatusNoContent, res.Code; e != g {
		t.Fatalf("res.Code: expected %v, got %v\n%s", e, g, res.Body.String())
	}

	restored, err := targetStore.GetTaskByID(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := task.Name, restored.Name; e != g {
		t.Errorf("restored.Name: expected %v, got %v", e, g)
	}
}

type fakeJobRunner struct {
	jobs map[model.JobID]model.Job
}

func (r *fakeJobRunner) ScheduleJob(ctx context.Context, job model.Job) error {
	r.jobs[job.ID()] = job
	return nil
}

func (r *fakeJobRunner) GetJobState(ctx context.Context, id model.JobID) (*port.JobState, error) {
	job, exists := r.jobs[id]
	if !exists {
		return nil, errors.WithStack(port.ErrNotFound)
	}

	return &port.JobState{
		JobStateHeader: port.JobStateHeader{
			ID:          job.ID(),
			Type:        job.Type(),
			ScheduledAt: testNow,
			Status:      port.JobStatusPending,
		},
	}, nil
}

func (r *fakeJobRunner) ListJobs(ctx context.Context) ([]port.JobStateHeader, error) {
	headers := make([]port.JobStateHeader, 0, len(r.jobs))
	for _, job := range r.jobs {
		headers = append(headers, port.JobStateHeader{ID: job.ID(), Type: job.Type(), Status: port.JobStatusPending})
	}
	return headers, nil
}

func (r *fakeJobRunner) CancelJob(ctx context.Context, id model.JobID) error {
	delete(r.jobs, id)
	return nil
}

func (r *fakeJobRunner) RegisterJob(jobType model.JobType, handler port.JobHandler) {}

func (r *fakeJobRunner) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

var _ port.JobRunner = &fakeJobRunner{}

func newTestHandler(t *testing.T) (*Handler, *gormAdapter.Store, *fakeJobRunner) {
	dsn := filepath.Join(t.TempDir(), "test.sqlite")

	db, err := gorm.Open(gormlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	internalDB, err := db.DB()
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	internalDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		internalDB.Close()
	})

	if err := db.Exec("PRAGMA journal_mode=wal; PRAGMA foreign_keys=on; PRAGMA busy_timeout=5000").Error; err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	store := gormAdapter.NewStore(db)

	taskManager := service.NewTaskManager(
		store, store, store,
		service.WithTaskManagerWeeklyBudget(600),
		service.WithTaskManagerClock(func() time.Time { return testNow }),
	)

	jobRunner := &fakeJobRunner{jobs: map[model.JobID]model.Job{}}

	return NewHandler(taskManager, jobRunner), store, jobRunner
}

func seedTask(t *testing.T, store *gormAdapter.Store, name string, status model.TaskStatus, priority model.TaskPriority, minutes int, dueDate *civil.Date) model.Task {
	task := model.NewTask(name)
	task.Status = status
	task.Priority = priority
	task.EstimatedMinutes = &minutes
	task.DueDate = dueDate
	task.CreatedAt = testNow.Add(-time.Hour)

	if err := store.SaveTask(context.Background(), task); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	return task
}

func serve(handler http.Handler, method string, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	return res
}

func decodeResponse(t *testing.T, res *httptest.ResponseRecorder, v any) {
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}
}
