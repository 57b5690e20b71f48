package usecase

import (
	"context"

	"github.com/taskpulse/backend/repository"
)

const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// TaskOperation is a task write that could not reach primary storage and
// should be replayed once it recovers. Input is set for creates, Patch for
// updates; deletes carry only the ids.
type TaskOperation struct {
	Kind   string
	UserID int64
	TaskID int64
	Input  *repository.TaskInput
	Patch  *repository.TaskPatch
}

// OperationBuffer abstracts the offline write buffer so use cases stay
// storage-agnostic.
type OperationBuffer interface {
	BufferTask(ctx context.Context, op TaskOperation) error
}
