package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/schedulr/apiserver/types"
)

// TaskRepository handles persistence for tasks in Postgres. Every read and
// write is scoped to the owning user.
type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) List(ctx context.Context, ownerID string) ([]types.Task, error) {
	tasks := make([]types.Task, 0)
	if _, err := uuid.Parse(ownerID); err != nil {
		return tasks, nil
	}

	const query = `
		SELECT id, text, completed, due_date, priority, created_at, user_id
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) FindOwned(ctx context.Context, id, ownerID string) (types.Task, error) {
	if !validIDs(id, ownerID) {
		return types.Task{}, ErrNotFound
	}

	const query = `
		SELECT id, text, completed, due_date, priority, created_at, user_id
		FROM tasks
		WHERE id = $1 AND user_id = $2`
	task, err := scanTask(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Task{}, ErrNotFound
		}
		return types.Task{}, err
	}
	return task, nil
}

func (r *TaskRepository) Create(ctx context.Context, task types.Task) (types.Task, error) {
	task.ID = uuid.NewString()
	task.CreatedAt = time.Now().UTC()

	const query = `
		INSERT INTO tasks (id, text, completed, due_date, priority, created_at, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Text,
		task.Completed,
		nullTime(task.DueDate),
		string(task.Priority),
		task.CreatedAt,
		task.UserID,
	); err != nil {
		return types.Task{}, err
	}
	return task, nil
}

// Update overwrites the mutable fields of an owned task. Last write wins.
func (r *TaskRepository) Update(ctx context.Context, task types.Task) (types.Task, error) {
	if !validIDs(task.ID, task.UserID) {
		return types.Task{}, ErrNotFound
	}

	const query = `
		UPDATE tasks
		SET text = $1,
			completed = $2,
			due_date = $3,
			priority = $4
		WHERE id = $5 AND user_id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		task.Text,
		task.Completed,
		nullTime(task.DueDate),
		string(task.Priority),
		task.ID,
		task.UserID,
	)
	if err != nil {
		return types.Task{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Task{}, err
	}
	if affected == 0 {
		return types.Task{}, ErrNotFound
	}
	return task, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id, ownerID string) error {
	if !validIDs(id, ownerID) {
		return ErrNotFound
	}

	const query = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (types.Task, error) {
	var task types.Task
	var dueDate sql.NullTime
	var priority string
	if err := row.Scan(
		&task.ID,
		&task.Text,
		&task.Completed,
		&dueDate,
		&priority,
		&task.CreatedAt,
		&task.UserID,
	); err != nil {
		return types.Task{}, err
	}
	task.Priority = types.Priority(priority)
	if dueDate.Valid {
		due := dueDate.Time
		task.DueDate = &due
	}
	return task, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// validIDs reports whether every id is a well-formed UUID. Malformed ids
// cannot match a row and are treated as not found.
func validIDs(ids ...string) bool {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return false
		}
	}
	return true
}
