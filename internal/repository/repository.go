// Package repository declares the storage contract the services are written against.
//
// A Store hands out units of work (Tx). Every read and write of a request goes
// through one Tx, which the caller must finish with Commit or Rollback. The store
// never rolls back on its own: callers defer Rollback right after Begin, and
// Rollback after a successful Commit is a no-op.
package repository

import (
	"context"

	"github.com/sakif/task-manager/internal/model"
)

// UserFilter selects users by equality on any non-nil field.
// The zero value matches every user.
type UserFilter struct {
	ID       *int64
	Username *string
	Slug     *string
	Age      *int
}

// TaskFilter selects tasks by equality on any non-nil field.
// The zero value matches every task.
type TaskFilter struct {
	ID       *int64
	UserID   *int64
	Slug     *string
	Priority *int
}

type Store interface {
	// Begin starts a unit of work that may write.
	Begin(ctx context.Context) (Tx, error)
	// BeginRead starts a unit of work for reads only. It never waits on
	// writers; write methods on the returned Tx fail.
	BeginRead(ctx context.Context) (Tx, error)
	Ping(ctx context.Context) error
}

type Tx interface {
	UserRepository
	TaskRepository

	// ID identifies the unit of work in logs.
	ID() string
	Commit() error
	Rollback() error
}

type UserRepository interface {
	InsertUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id int64) (*model.User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id int64) error
}

type TaskRepository interface {
	InsertTask(ctx context.Context, task *model.Task) error
	GetTask(ctx context.Context, id int64) (*model.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	UpdateTask(ctx context.Context, task *model.Task) error
	DeleteTask(ctx context.Context, id int64) error
	// DeleteTasksByUser removes every task owned by userID and reports how many went.
	DeleteTasksByUser(ctx context.Context, userID int64) (int64, error)
}
