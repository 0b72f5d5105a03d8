package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/task-manager/internal/apperror"
	"github.com/sakif/task-manager/internal/model"
	"github.com/sakif/task-manager/internal/repository"
)

const taskColumns = `id, title, content, priority, user_id, slug`

// InsertTask adds a task row and writes the generated id back into task.
// A task.UserID with no matching user fails on the foreign key.
func (t *Tx) InsertTask(ctx context.Context, task *model.Task) error {
	result, err := t.exec(ctx,
		`INSERT INTO tasks (title, content, priority, user_id, slug)
		 VALUES (?, ?, ?, ?, ?)`,
		task.Title,
		task.Content,
		task.Priority,
		task.UserID,
		task.Slug,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting task %q: %w", task.Title, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new task id: %w", err)
	}
	task.ID = id

	return nil
}

// GetTask returns apperror.ErrNotFound if no task has that id.
func (t *Tx) GetTask(ctx context.Context, id int64) (*model.Task, error) {
	task, err := scanTask(t.queryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("task", id)
		}
		return nil, fmt.Errorf("sqlite: getting task %d: %w", id, err)
	}
	return &task, nil
}

// ListTasks returns the tasks matching every set field of filter, in id order.
func (t *Tx) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]model.Task, error) {
	var preds []predicate
	if filter.ID != nil {
		preds = append(preds, predicate{"id", *filter.ID})
	}
	if filter.UserID != nil {
		preds = append(preds, predicate{"user_id", *filter.UserID})
	}
	if filter.Slug != nil {
		preds = append(preds, predicate{"slug", *filter.Slug})
	}
	if filter.Priority != nil {
		preds = append(preds, predicate{"priority", *filter.Priority})
	}
	clause, args := where(preds)

	rows, err := t.query(ctx, `SELECT `+taskColumns+` FROM tasks`+clause+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tasks: %w", err)
	}

	return tasks, nil
}

// UpdateTask overwrites title, content and priority. user_id and slug stay as
// they were at insert.
func (t *Tx) UpdateTask(ctx context.Context, task *model.Task) error {
	result, err := t.exec(ctx,
		`UPDATE tasks SET title = ?, content = ?, priority = ? WHERE id = ?`,
		task.Title,
		task.Content,
		task.Priority,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating task %d: %w", task.ID, err)
	}
	return affected(result, apperror.NotFound("task", task.ID))
}

func (t *Tx) DeleteTask(ctx context.Context, id int64) error {
	result, err := t.exec(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting task %d: %w", id, err)
	}
	return affected(result, apperror.NotFound("task", id))
}

// DeleteTasksByUser removes every task owned by userID. Zero is a valid count.
func (t *Tx) DeleteTasksByUser(ctx context.Context, userID int64) (int64, error) {
	result, err := t.exec(ctx, `DELETE FROM tasks WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting tasks of user %d: %w", userID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n, nil
}

func scanTask(row scanner) (model.Task, error) {
	var task model.Task
	err := row.Scan(&task.ID, &task.Title, &task.Content, &task.Priority, &task.UserID, &task.Slug)
	return task, err
}
