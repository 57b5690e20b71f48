package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taskpulse/backend/domain"
)

func window(t *testing.T) (time.Time, time.Time) {
	t.Helper()
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return start, start.Add(time.Hour)
}

func TestValidTimeRange(t *testing.T) {
	start, end := window(t)

	assert.True(t, domain.ValidTimeRange(start, end))
	assert.False(t, domain.ValidTimeRange(start, start))
	assert.False(t, domain.ValidTimeRange(end, start))
}

func TestTaskStatusValid(t *testing.T) {
	assert.True(t, domain.StatusPending.Valid())
	assert.True(t, domain.StatusInProgress.Valid())
	assert.True(t, domain.StatusCompleted.Valid())
	assert.False(t, domain.TaskStatus("archived").Valid())
	assert.False(t, domain.TaskStatus("").Valid())
}

func TestMetricsBeforeWindow(t *testing.T) {
	start, end := window(t)
	task := &domain.Task{StartTime: start, EndTime: end}

	m := task.Metrics(start.Add(-time.Hour))

	assert.Equal(t, 3600.0, m.TotalTime)
	assert.Equal(t, 0.0, m.TimeLapsed)
	assert.Equal(t, 3600.0, m.BalanceTime)
}

func TestMetricsAfterWindow(t *testing.T) {
	start, end := window(t)
	task := &domain.Task{StartTime: start, EndTime: end}

	m := task.Metrics(end.Add(30 * time.Minute))

	assert.Equal(t, 3600.0, m.TotalTime)
	assert.Equal(t, 3600.0, m.TimeLapsed)
	assert.Equal(t, 0.0, m.BalanceTime)
}

func TestMetricsInsideWindow(t *testing.T) {
	start, end := window(t)
	task := &domain.Task{StartTime: start, EndTime: end}

	m := task.Metrics(start.Add(15 * time.Minute))

	assert.Equal(t, 3600.0, m.TotalTime)
	assert.Equal(t, 900.0, m.TimeLapsed)
	assert.Equal(t, 2700.0, m.BalanceTime)
}

func TestMetricsAtBounds(t *testing.T) {
	start, end := window(t)
	task := &domain.Task{StartTime: start, EndTime: end}

	atStart := task.Metrics(start)
	assert.Equal(t, 0.0, atStart.TimeLapsed)
	assert.Equal(t, 3600.0, atStart.BalanceTime)

	atEnd := task.Metrics(end)
	assert.Equal(t, 3600.0, atEnd.TimeLapsed)
	assert.Equal(t, 0.0, atEnd.BalanceTime)
}

func TestCompletionRate(t *testing.T) {
	stats := domain.TaskStats{TotalTasks: 10, CompletedTasks: 4}
	assert.InDelta(t, 0.4, stats.CompletionRate(), 1e-9)

	assert.Equal(t, 0.0, domain.TaskStats{}.CompletionRate())
}

func TestIsDomainError(t *testing.T) {
	assert.True(t, domain.IsDomainError(domain.ErrTaskNotFound, domain.ErrCodeNotFound))
	assert.True(t, domain.IsDomainError(domain.ErrInvalidTimeRange, domain.ErrCodeInvalid))
	assert.False(t, domain.IsDomainError(domain.ErrTaskNotFound, domain.ErrCodeInvalid))

	wrapped := domain.WrapError(domain.ErrCodeInternal, "query failed", assert.AnError)
	assert.True(t, domain.IsDomainError(wrapped, domain.ErrCodeInternal))
}
