package domain

import "time"

// TaskStatus enumerates the lifecycle states of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// Valid reports whether the status is one of the known states.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task represents a user-owned unit of work with a planned time window.
type Task struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Deleted     bool       `json:"-"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// ValidTimeRange reports whether end strictly follows start.
func ValidTimeRange(start, end time.Time) bool {
	return end.After(start)
}

// TimeMetrics describes how much of a task's planned window has elapsed
// relative to a reference time. All values are in seconds.
type TimeMetrics struct {
	TotalTime   float64 `json:"total_time"`
	TimeLapsed  float64 `json:"time_lapsed"`
	BalanceTime float64 `json:"balance_time"`
}

// Metrics computes time metrics for the task against the given reference
// time. TimeLapsed is clamped to TotalTime and BalanceTime is zero once the
// window has closed; the three values need not sum when now falls outside
// the window.
func (t *Task) Metrics(now time.Time) TimeMetrics {
	total := t.EndTime.Sub(t.StartTime).Seconds()

	var lapsed float64
	if now.After(t.StartTime) {
		lapsed = now.Sub(t.StartTime).Seconds()
		if lapsed > total {
			lapsed = total
		}
	}

	var balance float64
	if now.Before(t.EndTime) {
		from := now
		if t.StartTime.After(now) {
			from = t.StartTime
		}
		balance = t.EndTime.Sub(from).Seconds()
	}

	return TimeMetrics{
		TotalTime:   total,
		TimeLapsed:  lapsed,
		BalanceTime: balance,
	}
}
