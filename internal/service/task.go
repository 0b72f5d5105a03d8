package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/task-manager/internal/apperror"
	"github.com/sakif/task-manager/internal/model"
	"github.com/sakif/task-manager/internal/repository"
)

// TaskService handles business logic for tasks.
type TaskService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewTaskService(store repository.Store, logger *slog.Logger) *TaskService {
	return &TaskService{
		store:  store,
		logger: logger,
	}
}

// List returns every task. An empty store gives an empty slice, not an error.
func (s *TaskService) List(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	err := inReadTx(ctx, s.store, s.logger, func(tx repository.Tx) error {
		var err error
		tasks, err = tx.ListTasks(ctx, repository.TaskFilter{})
		return err
	})
	if err != nil {
		s.logger.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// GetByID returns apperror.ErrNotFound if the task doesn't exist.
func (s *TaskService) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	var task *model.Task
	err := inReadTx(ctx, s.store, s.logger, func(tx repository.Tx) error {
		var err error
		task, err = tx.GetTask(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("getting task: %w", err)
	}
	return task, nil
}

// Create adds a task owned by ownerID. Fields are stored as given; a title
// that is blank after trimming is rejected.
//
// The owner is looked up inside the same unit of work as the insert, so the
// check and the write see the same data. A missing owner is ErrNotFound and
// nothing is written. Any failure of the insert or the commit is rolled back
// and reported as ErrValidation carrying the cause.
func (s *TaskService) Create(ctx context.Context, ownerID int64, title, content string, priority int) (*model.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperror.ValidationFailed("title", "task title is required")
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	defer rollback(tx, s.logger)

	if _, err := tx.GetUser(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	task := &model.Task{
		Title:    title,
		Content:  content,
		Priority: priority,
		UserID:   ownerID,
		Slug:     makeSlug(title),
	}

	if err := tx.InsertTask(ctx, task); err != nil {
		return nil, s.createFailed(tx, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, s.createFailed(tx, err)
	}

	s.logger.Info("task created",
		slog.Int64("id", task.ID),
		slog.Int64("user_id", task.UserID),
		slog.String("slug", task.Slug),
	)

	return task, nil
}

func (s *TaskService) createFailed(tx repository.Tx, cause error) error {
	rollback(tx, s.logger)
	s.logger.Error("failed to create task",
		slog.String("uow", tx.ID()),
		slog.String("error", cause.Error()),
	)
	return apperror.WriteFailed("task", cause)
}

// Update replaces title, content and priority. The slug keeps the value
// derived from the original title.
func (s *TaskService) Update(ctx context.Context, id int64, title, content string, priority int) error {
	if strings.TrimSpace(title) == "" {
		return apperror.ValidationFailed("title", "task title is required")
	}

	err := inTx(ctx, s.store, s.logger, func(tx repository.Tx) error {
		return tx.UpdateTask(ctx, &model.Task{
			ID:       id,
			Title:    title,
			Content:  content,
			Priority: priority,
		})
	})
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}

	s.logger.Info("task updated", slog.Int64("id", id))
	return nil
}

// Delete returns apperror.ErrNotFound if the task doesn't exist.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	err := inTx(ctx, s.store, s.logger, func(tx repository.Tx) error {
		return tx.DeleteTask(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}

	s.logger.Info("task deleted", slog.Int64("id", id))
	return nil
}
