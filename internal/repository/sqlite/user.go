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

const userColumns = `id, username, firstname, lastname, age, slug`

// InsertUser adds a user row and writes the generated id back into user.
func (t *Tx) InsertUser(ctx context.Context, user *model.User) error {
	result, err := t.exec(ctx,
		`INSERT INTO users (username, firstname, lastname, age, slug)
		 VALUES (?, ?, ?, ?, ?)`,
		user.Username,
		user.Firstname,
		user.Lastname,
		user.Age,
		user.Slug,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new user id: %w", err)
	}
	user.ID = id

	return nil
}

// GetUser returns apperror.ErrNotFound if no user has that id.
func (t *Tx) GetUser(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(t.queryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}
	return &u, nil
}

// ListUsers returns the users matching every set field of filter, in id order.
// The result is never nil, so it encodes as [] and not null.
func (t *Tx) ListUsers(ctx context.Context, filter repository.UserFilter) ([]model.User, error) {
	var preds []predicate
	if filter.ID != nil {
		preds = append(preds, predicate{"id", *filter.ID})
	}
	if filter.Username != nil {
		preds = append(preds, predicate{"username", *filter.Username})
	}
	if filter.Slug != nil {
		preds = append(preds, predicate{"slug", *filter.Slug})
	}
	if filter.Age != nil {
		preds = append(preds, predicate{"age", *filter.Age})
	}
	clause, args := where(preds)

	rows, err := t.query(ctx, `SELECT `+userColumns+` FROM users`+clause+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}

	return users, nil
}

// UpdateUser overwrites firstname, lastname and age. username and slug are
// never written after insert.
func (t *Tx) UpdateUser(ctx context.Context, user *model.User) error {
	result, err := t.exec(ctx,
		`UPDATE users SET firstname = ?, lastname = ?, age = ? WHERE id = ?`,
		user.Firstname,
		user.Lastname,
		user.Age,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %d: %w", user.ID, err)
	}
	return affected(result, apperror.NotFound("user", user.ID))
}

// DeleteUser removes only the user row. The caller deletes the user's tasks
// first; the foreign key rejects the delete otherwise.
func (t *Tx) DeleteUser(ctx context.Context, id int64) error {
	result, err := t.exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %d: %w", id, err)
	}
	return affected(result, apperror.NotFound("user", id))
}

func scanUser(row scanner) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Firstname, &u.Lastname, &u.Age, &u.Slug)
	return u, err
}
