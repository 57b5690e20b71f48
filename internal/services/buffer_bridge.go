package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/taskpulse/backend/domain"
	"github.com/taskpulse/backend/internal/infrastructure/buffer"
	"github.com/taskpulse/backend/usecase"
)

// BufferBridge adapts the processor to the usecase OperationBuffer port.
type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferTask(ctx context.Context, op usecase.TaskOperation) error {
	if b.processor == nil {
		return domain.ErrInvalidPayload
	}

	item := buffer.Item{
		UserID:    op.UserID,
		TaskID:    op.TaskID,
		Operation: op.Kind,
		Priority:  4,
	}

	switch op.Kind {
	case usecase.OperationCreate:
		if op.Input == nil {
			return domain.ErrInvalidPayload
		}
		payload, err := json.Marshal(op.Input)
		if err != nil {
			return err
		}
		item.Payload = payload

	case usecase.OperationUpdate:
		if op.Patch == nil {
			return domain.ErrInvalidPayload
		}
		payload, err := json.Marshal(op.Patch)
		if err != nil {
			return err
		}
		item.Payload = payload

	case usecase.OperationDelete:
		// ids are enough

	default:
		return fmt.Errorf("unsupported operation %s", op.Kind)
	}

	return b.processor.BufferOperation(ctx, item)
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
