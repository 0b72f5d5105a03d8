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

// UserService handles business logic for users, including the removal of a
// user's tasks when the user goes.
type UserService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewUserService(store repository.Store, logger *slog.Logger) *UserService {
	return &UserService{
		store:  store,
		logger: logger,
	}
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := inReadTx(ctx, s.store, s.logger, func(tx repository.Tx) error {
		var err error
		users, err = tx.ListUsers(ctx, repository.UserFilter{})
		return err
	})
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// GetByID returns apperror.ErrNotFound if the user doesn't exist.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user *model.User
	err := inReadTx(ctx, s.store, s.logger, func(tx repository.Tx) error {
		var err error
		user, err = tx.GetUser(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}

// Create adds a user whose slug is derived from username. Fields are stored
// as given; a username that is blank after trimming is rejected. Insert and
// commit failures are rolled back and reported as ErrValidation carrying the
// cause.
func (s *UserService) Create(ctx context.Context, username, firstname, lastname string, age int) (*model.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	defer rollback(tx, s.logger)

	user := &model.User{
		Username:  username,
		Firstname: firstname,
		Lastname:  lastname,
		Age:       age,
		Slug:      makeSlug(username),
	}

	if err := tx.InsertUser(ctx, user); err != nil {
		return nil, s.createFailed(tx, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, s.createFailed(tx, err)
	}

	s.logger.Info("user created",
		slog.Int64("id", user.ID),
		slog.String("slug", user.Slug),
	)

	return user, nil
}

func (s *UserService) createFailed(tx repository.Tx, cause error) error {
	rollback(tx, s.logger)
	s.logger.Error("failed to create user",
		slog.String("uow", tx.ID()),
		slog.String("error", cause.Error()),
	)
	return apperror.WriteFailed("user", cause)
}

// Update replaces firstname, lastname and age. username and slug never change.
func (s *UserService) Update(ctx context.Context, id int64, firstname, lastname string, age int) error {
	err := inTx(ctx, s.store, s.logger, func(tx repository.Tx) error {
		return tx.UpdateUser(ctx, &model.User{
			ID:        id,
			Firstname: firstname,
			Lastname:  lastname,
			Age:       age,
		})
	})
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	s.logger.Info("user updated", slog.Int64("id", id))
	return nil
}

// ListTasks returns the tasks owned by user id. An existing user with no
// tasks gives an empty slice; a missing user is ErrNotFound.
func (s *UserService) ListTasks(ctx context.Context, id int64) ([]model.Task, error) {
	var tasks []model.Task
	err := inReadTx(ctx, s.store, s.logger, func(tx repository.Tx) error {
		if _, err := tx.GetUser(ctx, id); err != nil {
			return err
		}
		var err error
		tasks, err = tx.ListTasks(ctx, repository.TaskFilter{UserID: &id})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing tasks of user: %w", err)
	}
	return tasks, nil
}

// Delete removes the user and every task they own, in one unit of work.
//
// The user's existence is checked first: for a missing id nothing is touched
// and ErrNotFound is returned. Otherwise the tasks go, then the user, then
// the commit. A failure at any step rolls all of it back, so no reader ever
// sees the user without their tasks gone or the other way round.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	var removed int64
	err := inTx(ctx, s.store, s.logger, func(tx repository.Tx) error {
		if _, err := tx.GetUser(ctx, id); err != nil {
			return err
		}
		n, err := tx.DeleteTasksByUser(ctx, id)
		if err != nil {
			return err
		}
		removed = n
		return tx.DeleteUser(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	s.logger.Info("user deleted",
		slog.Int64("id", id),
		slog.Int64("tasks_removed", removed),
	)
	return nil
}
