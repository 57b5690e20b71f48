package task

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/taskpulse/backend/domain"
	"github.com/taskpulse/backend/repository"
	"github.com/taskpulse/backend/usecase"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

type UseCase struct {
	tasks  repository.TaskRepository
	buffer usecase.OperationBuffer
	logger *zap.Logger
	now    func() time.Time
}

func New(tasks repository.TaskRepository, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		buffer: buffer,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the wall-clock source used for time metrics.
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	if now != nil {
		uc.now = now
	}
	return uc
}

// CreateTask validates the input and persists a new task for the user.
// Validation happens before any write; a storage failure falls back to the
// offline buffer when one is configured.
func (uc *UseCase) CreateTask(ctx context.Context, userID int64, input repository.TaskInput) (*domain.Task, error) {
	if input.Title == "" || input.Description == "" || input.StartTime.IsZero() || input.EndTime.IsZero() {
		return nil, domain.ErrInvalidPayload
	}
	if input.Status == "" {
		input.Status = domain.StatusPending
	}
	if !input.Status.Valid() {
		return nil, domain.ErrInvalidPayload
	}
	if !domain.ValidTimeRange(input.StartTime, input.EndTime) {
		return nil, domain.ErrInvalidTimeRange
	}

	created, err := uc.tasks.Create(ctx, userID, input)
	if err != nil {
		op := usecase.TaskOperation{Kind: usecase.OperationCreate, UserID: userID, Input: &input}
		if uc.shouldBuffer(ctx, op) {
			return &domain.Task{
				UserID:      userID,
				Title:       input.Title,
				Description: input.Description,
				Status:      input.Status,
				StartTime:   input.StartTime,
				EndTime:     input.EndTime,
			}, nil
		}
		return nil, err
	}
	return created, nil
}

func (uc *UseCase) ListTasks(ctx context.Context, userID int64, page, limit int) ([]domain.Task, int, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return uc.tasks.List(ctx, userID, page, limit)
}

func (uc *UseCase) GetTask(ctx context.Context, taskID, userID int64) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, taskID, userID)
}

// UpdateTask applies a partial update. When either window bound is patched,
// the untouched bound is merged from the stored row and the range is
// re-validated before any write. A patch touching neither bound skips the
// re-validation.
func (uc *UseCase) UpdateTask(ctx context.Context, taskID, userID int64, patch repository.TaskPatch) (*domain.Task, error) {
	if patch.Empty() {
		return nil, domain.ErrNoValidFields
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, domain.ErrInvalidPayload
	}

	if patch.TouchesTimeRange() {
		current, err := uc.tasks.GetByID(ctx, taskID, userID)
		if err != nil {
			return nil, err
		}
		start, end := current.StartTime, current.EndTime
		if patch.StartTime != nil {
			start = *patch.StartTime
		}
		if patch.EndTime != nil {
			end = *patch.EndTime
		}
		if !domain.ValidTimeRange(start, end) {
			return nil, domain.ErrInvalidTimeRange
		}
	}

	updated, err := uc.tasks.Update(ctx, taskID, userID, patch)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) || domain.IsDomainError(err, domain.ErrCodeInvalid) {
			return nil, err
		}
		op := usecase.TaskOperation{Kind: usecase.OperationUpdate, UserID: userID, TaskID: taskID, Patch: &patch}
		if uc.shouldBuffer(ctx, op) {
			return pendingUpdate(taskID, userID, patch), nil
		}
		return nil, err
	}
	return updated, nil
}

// DeleteTask flips the soft-delete flag. The bool result reports whether a
// live row was actually deleted, so a repeated call yields false.
func (uc *UseCase) DeleteTask(ctx context.Context, taskID, userID int64) (bool, error) {
	deleted, err := uc.tasks.Delete(ctx, taskID, userID)
	if err != nil {
		op := usecase.TaskOperation{Kind: usecase.OperationDelete, UserID: userID, TaskID: taskID}
		if uc.shouldBuffer(ctx, op) {
			return true, nil
		}
		return false, err
	}
	return deleted, nil
}

func (uc *UseCase) TaskStats(ctx context.Context, userID int64) (*domain.TaskStats, error) {
	return uc.tasks.Stats(ctx, userID)
}

// TimeMetrics computes the task's time metrics against the current clock.
// Unlike GetTask, an unknown task is an error here.
func (uc *UseCase) TimeMetrics(ctx context.Context, taskID, userID int64) (*domain.TimeMetrics, error) {
	task, err := uc.tasks.GetByID(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}
	metrics := task.Metrics(uc.now())
	return &metrics, nil
}

func (uc *UseCase) shouldBuffer(ctx context.Context, op usecase.TaskOperation) bool {
	if uc.buffer == nil {
		return false
	}
	if err := uc.buffer.BufferTask(ctx, op); err != nil {
		uc.logger.Error("failed to buffer task operation", zap.String("operation", op.Kind), zap.Error(err))
		return false
	}
	uc.logger.Warn("task operation buffered", zap.String("operation", op.Kind), zap.Int64("task_id", op.TaskID))
	return true
}

// pendingUpdate echoes the accepted-but-deferred update back to the caller.
func pendingUpdate(taskID, userID int64, patch repository.TaskPatch) *domain.Task {
	task := &domain.Task{ID: taskID, UserID: userID}
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.StartTime != nil {
		task.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		task.EndTime = *patch.EndTime
	}
	return task
}
