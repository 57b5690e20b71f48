package domain

// TaskStats is a point-in-time aggregate over a user's non-deleted tasks.
// It is recomputed on every request and never persisted.
type TaskStats struct {
	TotalTasks            int     `json:"totalTasks"`
	CompletedTasks        int     `json:"completedTasks"`
	PendingTasks          int     `json:"pendingTasks"`
	InProgressTasks       int     `json:"inProgressTasks"`
	AverageCompletionTime float64 `json:"averageCompletionTime"`
}

// CompletionRate returns the completed-to-total ratio, 0 for an empty set.
func (s TaskStats) CompletionRate() float64 {
	if s.TotalTasks == 0 {
		return 0
	}
	return float64(s.CompletedTasks) / float64(s.TotalTasks)
}
