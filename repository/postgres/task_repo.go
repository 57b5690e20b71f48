package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskpulse/backend/domain"
	"github.com/taskpulse/backend/repository"
)

// notDeleted is the single soft-delete predicate every task query must carry.
const notDeleted = "deleted IS NOT TRUE"

const taskColumns = "id, user_id, title, description, status, start_time, end_time, created_at, updated_at, deleted"

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) Create(ctx context.Context, userID int64, input repository.TaskInput) (*domain.Task, error) {
	const query = `
	INSERT INTO tasks (user_id, title, description, status, start_time, end_time)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING ` + taskColumns

	row := r.pool.QueryRow(ctx, query,
		userID,
		input.Title,
		input.Description,
		input.Status,
		input.StartTime,
		input.EndTime,
	)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context, userID int64, page, limit int) ([]domain.Task, int, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE user_id = $1 AND ` + notDeleted + `
	ORDER BY created_at DESC
	LIMIT $2 OFFSET $3
	`
	page, limit = normalizePage(page, limit)
	offset := (page - 1) * limit

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	const countQuery = `SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND ` + notDeleted

	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	return tasks, int(total), nil
}

func (r *taskRepository) GetByID(ctx context.Context, taskID, userID int64) (*domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE id = $1 AND user_id = $2 AND ` + notDeleted

	row := r.pool.QueryRow(ctx, query, taskID, userID)
	return scanTask(row)
}

func (r *taskRepository) Update(ctx context.Context, taskID, userID int64, patch repository.TaskPatch) (*domain.Task, error) {
	if patch.Empty() {
		return nil, domain.ErrNoValidFields
	}

	query, args := buildTaskUpdate(taskID, userID, patch)
	row := r.pool.QueryRow(ctx, query, args...)
	return scanTask(row)
}

func (r *taskRepository) Delete(ctx context.Context, taskID, userID int64) (bool, error) {
	const query = `UPDATE tasks SET deleted = TRUE WHERE id = $1 AND user_id = $2 AND ` + notDeleted

	tag, err := r.pool.Exec(ctx, query, taskID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *taskRepository) Stats(ctx context.Context, userID int64) (*domain.TaskStats, error) {
	const query = `
	WITH task_metrics AS (
		SELECT
			COUNT(*) AS total_tasks,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed_tasks,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending_tasks,
			COUNT(*) FILTER (WHERE status = 'in_progress') AS in_progress_tasks,
			AVG(CASE
				WHEN status = 'completed'
				THEN EXTRACT(EPOCH FROM (end_time - start_time))
				ELSE NULL
			END) AS avg_completion_time
		FROM tasks
		WHERE user_id = $1 AND ` + notDeleted + `
	)
	SELECT
		total_tasks,
		completed_tasks,
		pending_tasks,
		in_progress_tasks,
		COALESCE(avg_completion_time, 0)::float8 AS average_completion_time
	FROM task_metrics
	`

	var (
		stats                                 domain.TaskStats
		total, completed, pending, inProgress int64
	)
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&total,
		&completed,
		&pending,
		&inProgress,
		&stats.AverageCompletionTime,
	); err != nil {
		return nil, err
	}

	stats.TotalTasks = int(total)
	stats.CompletedTasks = int(completed)
	stats.PendingTasks = int(pending)
	stats.InProgressTasks = int(inProgress)
	return &stats, nil
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task

	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.StartTime,
		&task.EndTime,
		&task.CreatedAt,
		&task.UpdatedAt,
		&task.Deleted,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	return &task, nil
}
