package task_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpulse/backend/domain"
	"github.com/taskpulse/backend/repository"
	"github.com/taskpulse/backend/usecase"
	"github.com/taskpulse/backend/usecase/task"
)

// fakeTaskRepo mimics the postgres repository semantics in memory,
// including soft deletion and owner scoping.
type fakeTaskRepo struct {
	nextID   int64
	tasks    map[int64]*domain.Task
	failWith error
	getCalls int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[int64]*domain.Task)}
}

func (f *fakeTaskRepo) Create(_ context.Context, userID int64, input repository.TaskInput) (*domain.Task, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.nextID++
	now := time.Now()
	t := &domain.Task{
		ID:          f.nextID,
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.tasks[t.ID] = t
	out := *t
	return &out, nil
}

func (f *fakeTaskRepo) List(_ context.Context, userID int64, page, limit int) ([]domain.Task, int, error) {
	if f.failWith != nil {
		return nil, 0, f.failWith
	}
	var owned []domain.Task
	for _, t := range f.tasks {
		if t.UserID == userID && !t.Deleted {
			owned = append(owned, *t)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if !owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].CreatedAt.After(owned[j].CreatedAt)
		}
		return owned[i].ID > owned[j].ID
	})
	total := len(owned)
	offset := (page - 1) * limit
	if offset >= total {
		return []domain.Task{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return owned[offset:end], total, nil
}

func (f *fakeTaskRepo) GetByID(_ context.Context, taskID, userID int64) (*domain.Task, error) {
	f.getCalls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	t, ok := f.tasks[taskID]
	if !ok || t.Deleted || t.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	out := *t
	return &out, nil
}

func (f *fakeTaskRepo) Update(_ context.Context, taskID, userID int64, patch repository.TaskPatch) (*domain.Task, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	t, ok := f.tasks[taskID]
	if !ok || t.Deleted || t.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.StartTime != nil {
		t.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		t.EndTime = *patch.EndTime
	}
	t.UpdatedAt = time.Now()
	out := *t
	return &out, nil
}

func (f *fakeTaskRepo) Delete(_ context.Context, taskID, userID int64) (bool, error) {
	if f.failWith != nil {
		return false, f.failWith
	}
	t, ok := f.tasks[taskID]
	if !ok || t.Deleted || t.UserID != userID {
		return false, nil
	}
	t.Deleted = true
	return true, nil
}

func (f *fakeTaskRepo) Stats(_ context.Context, userID int64) (*domain.TaskStats, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	stats := &domain.TaskStats{}
	for _, t := range f.tasks {
		if t.UserID != userID || t.Deleted {
			continue
		}
		stats.TotalTasks++
		switch t.Status {
		case domain.StatusCompleted:
			stats.CompletedTasks++
		case domain.StatusPending:
			stats.PendingTasks++
		case domain.StatusInProgress:
			stats.InProgressTasks++
		}
	}
	return stats, nil
}

type fakeBuffer struct {
	ops []usecase.TaskOperation
	err error
}

func (f *fakeBuffer) BufferTask(_ context.Context, op usecase.TaskOperation) error {
	if f.err != nil {
		return f.err
	}
	f.ops = append(f.ops, op)
	return nil
}

func validInput() repository.TaskInput {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return repository.TaskInput{
		Title:       "write report",
		Description: "quarterly numbers",
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
	}
}

func TestCreateTaskDefaultsStatus(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := task.New(repo, nil, nil)

	created, err := uc.CreateTask(context.Background(), 1, validInput())
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, domain.StatusPending, created.Status)
	assert.Equal(t, int64(1), created.UserID)
	assert.NotZero(t, created.ID)
}

func TestCreateTaskRejectsMissingFields(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := task.New(repo, nil, nil)

	input := validInput()
	input.Title = ""

	_, err := uc.CreateTask(context.Background(), 1, input)
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
	assert.Empty(t, repo.tasks)
}

func TestCreateTaskRejectsInvalidRange(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := task.New(repo, nil, nil)

	input := validInput()
	input.EndTime = input.StartTime

	_, err := uc.CreateTask(context.Background(), 1, input)
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
	assert.Empty(t, repo.tasks)
}

func TestCreateTaskRejectsUnknownStatus(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := task.New(repo, nil, nil)

	input := validInput()
	input.Status = domain.TaskStatus("archived")

	_, err := uc.CreateTask(context.Background(), 1, input)
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestCreateTaskBuffersOnStorageFailure(t *testing.T) {
	repo := newFakeTaskRepo()
	repo.failWith = assert.AnError
	buf := &fakeBuffer{}
	uc := task.New(repo, buf, nil)

	created, err := uc.CreateTask(context.Background(), 1, validInput())
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "write report", created.Title)

	require.Len(t, buf.ops, 1)
	assert.Equal(t, usecase.OperationCreate, buf.ops[0].Kind)
	require.NotNil(t, buf.ops[0].Input)
	assert.Equal(t, "write report", buf.ops[0].Input.Title)
}

func TestCreateTaskValidationNeverBuffered(t *testing.T) {
	repo := newFakeTaskRepo()
	buf := &fakeBuffer{}
	uc := task.New(repo, buf, nil)

	input := validInput()
	input.EndTime = input.StartTime

	_, err := uc.CreateTask(context.Background(), 1, input)
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
	assert.Empty(t, buf.ops)
}

func TestListTasksDefaultsPagination(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := task.New(repo, nil, nil)

	for i := 0; i < 15; i++ {
		_, err := uc.CreateTask(context.Background(), 1, validInput())
		require.NoError(t, err)
	}

	tasks, total, err := uc.ListTasks(context.Background(), 1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	assert.Len(t, tasks, task.DefaultLimit)

	tasks, total, err = uc.ListTasks(context.Background(), 1, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	assert.Len(t, tasks, 5)
}

func TestListTasksScopedToOwner(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := task.New(repo, nil, nil)

	_, err := uc.CreateTask(context.Background(), 1, validInput())
	require.NoError(t, err)
	_, err = uc.CreateTask(context.Background(), 2, validInput())
	require.NoError(t, err)

	tasks, total, err := uc.ListTasks(context.Background(), 1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, tasks, 1)
	assert.Equal(t, int64(1), tasks[0].UserID)
}

func TestGetTaskOtherOwnerNotFound(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := task.New(repo, nil, nil)

	created, err := uc.CreateTask(context.Background(), 1, validInput())
	require.NoError(t, err)

	_, err = uc.GetTask(context.Background(), created.ID, 2)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestUpdateTaskEmptyPatch(t *testing.T) {
	uc := task.New(newFakeTaskRepo(), nil, nil)

	_, err := uc.UpdateTask(context.Background(), 1, 1, repository.TaskPatch{})
	assert.ErrorIs(t, err, domain.ErrNoValidFields)
}

func TestUpdateTaskStatusOnlySkipsRangeLookup(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := task.New(repo, nil, nil)

	created, err := uc.CreateTask(context.Background(), 1, validInput())
	require.NoError(t, err)
	repo.getCalls = 0

	status := domain.StatusCompleted
	updated, err := uc.UpdateTask(context.Background(), created.ID, 1, repository.TaskPatch{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, updated.Status)
	assert.Zero(t, repo.getCalls)
}

func TestUpdateTaskMergesStoredBound(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := task.New(repo, nil, nil)

	created, err := uc.CreateTask(context.Background(), 1, validInput())
	require.NoError(t, err)

	newEnd := created.StartTime.Add(4 * time.Hour)
	updated, err := uc.UpdateTask(context.Background(), created.ID, 1, repository.TaskPatch{EndTime: &newEnd})
	require.NoError(t, err)

	assert.Equal(t, created.StartTime, updated.StartTime)
	assert.Equal(t, newEnd, updated.EndTime)
}

func TestUpdateTaskRejectsEndBeforeStoredStart(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := task.New(repo, nil, nil)

	created, err := uc.CreateTask(context.Background(), 1, validInput())
	require.NoError(t, err)

	badEnd := created.StartTime.Add(-time.Minute)
	_, err = uc.UpdateTask(context.Background(), created.ID, 1, repository.TaskPatch{EndTime: &badEnd})
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)

	// stored row untouched
	stored, err := uc.GetTask(context.Background(), created.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, created.EndTime, stored.EndTime)
}

func TestUpdateTaskNotFoundNeverBuffered(t *testing.T) {
	repo := newFakeTaskRepo()
	buf := &fakeBuffer{}
	uc := task.New(repo, buf, nil)

	title := "renamed"
	_, err := uc.UpdateTask(context.Background(), 99, 1, repository.TaskPatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.Empty(t, buf.ops)
}

func TestUpdateTaskBuffersOnStorageFailure(t *testing.T) {
	repo := newFakeTaskRepo()
	repo.failWith = assert.AnError
	buf := &fakeBuffer{}
	uc := task.New(repo, buf, nil)

	title := "renamed"
	updated, err := uc.UpdateTask(context.Background(), 7, 1, repository.TaskPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)

	require.Len(t, buf.ops, 1)
	assert.Equal(t, usecase.OperationUpdate, buf.ops[0].Kind)
	assert.Equal(t, int64(7), buf.ops[0].TaskID)
}

func TestDeleteTaskIdempotent(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := task.New(repo, nil, nil)

	created, err := uc.CreateTask(context.Background(), 1, validInput())
	require.NoError(t, err)

	deleted, err := uc.DeleteTask(context.Background(), created.ID, 1)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = uc.DeleteTask(context.Background(), created.ID, 1)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestSoftDeletedTaskInvisible(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := task.New(repo, nil, nil)

	created, err := uc.CreateTask(context.Background(), 1, validInput())
	require.NoError(t, err)

	_, err = uc.DeleteTask(context.Background(), created.ID, 1)
	require.NoError(t, err)

	_, err = uc.GetTask(context.Background(), created.ID, 1)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	tasks, total, err := uc.ListTasks(context.Background(), 1, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Zero(t, total)

	stats, err := uc.TaskStats(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalTasks)
}

func TestTaskStatsCounts(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := task.New(repo, nil, nil)

	statuses := []domain.TaskStatus{
		domain.StatusCompleted, domain.StatusCompleted,
		domain.StatusPending, domain.StatusPending, domain.StatusPending,
		domain.StatusInProgress,
	}
	for _, s := range statuses {
		input := validInput()
		input.Status = s
		_, err := uc.CreateTask(context.Background(), 1, input)
		require.NoError(t, err)
	}

	stats, err := uc.TaskStats(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 6, stats.TotalTasks)
	assert.Equal(t, 2, stats.CompletedTasks)
	assert.Equal(t, 3, stats.PendingTasks)
	assert.Equal(t, 1, stats.InProgressTasks)
}

func TestTimeMetricsUsesInjectedClock(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := task.New(repo, nil, nil)

	input := validInput()
	created, err := uc.CreateTask(context.Background(), 1, input)
	require.NoError(t, err)

	uc.WithClock(func() time.Time { return input.StartTime.Add(30 * time.Minute) })

	m, err := uc.TimeMetrics(context.Background(), created.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, 7200.0, m.TotalTime)
	assert.Equal(t, 1800.0, m.TimeLapsed)
	assert.Equal(t, 5400.0, m.BalanceTime)
}

func TestTimeMetricsNotFound(t *testing.T) {
	uc := task.New(newFakeTaskRepo(), nil, nil)

	_, err := uc.TimeMetrics(context.Background(), 42, 1)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}
