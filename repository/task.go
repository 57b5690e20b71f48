package repository

import (
	"context"
	"time"

	"github.com/taskpulse/backend/domain"
)

// TaskInput carries the validated fields for a new task.
type TaskInput struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      domain.TaskStatus `json:"status"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     time.Time         `json:"end_time"`
}

// TaskPatch is a partial update. Nil fields are left untouched; the field
// set doubles as the update allow-list.
type TaskPatch struct {
	Title       *string            `json:"title,omitempty"`
	Description *string            `json:"description,omitempty"`
	Status      *domain.TaskStatus `json:"status,omitempty"`
	StartTime   *time.Time         `json:"start_time,omitempty"`
	EndTime     *time.Time         `json:"end_time,omitempty"`
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.StartTime == nil && p.EndTime == nil
}

// TouchesTimeRange reports whether the patch changes either window bound.
func (p TaskPatch) TouchesTimeRange() bool {
	return p.StartTime != nil || p.EndTime != nil
}

type TaskRepository interface {
	Create(ctx context.Context, userID int64, input TaskInput) (*domain.Task, error)
	List(ctx context.Context, userID int64, page, limit int) ([]domain.Task, int, error)
	GetByID(ctx context.Context, taskID, userID int64) (*domain.Task, error)
	Update(ctx context.Context, taskID, userID int64, patch TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, taskID, userID int64) (bool, error)
	Stats(ctx context.Context, userID int64) (*domain.TaskStats, error)
}
