package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/task-manager/internal/apperror"
	"github.com/sakif/task-manager/internal/model"
	"github.com/sakif/task-manager/internal/repository"
)

func TestInsertUser(t *testing.T) {
	tx := begin(t, newTestDB(t))

	user := &model.User{
		Username:  "bob",
		Firstname: "Bob",
		Lastname:  "Builder",
		Age:       40,
		Slug:      "bob",
	}
	if err := tx.InsertUser(context.Background(), user); err != nil {
		t.Fatalf("InsertUser() error = %v", err)
	}

	// The generated id is written back through the pointer.
	if user.ID == 0 {
		t.Error("InsertUser() did not set user.ID")
	}

	found, err := tx.GetUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if *found != *user {
		t.Errorf("GetUser() = %+v, want %+v", *found, *user)
	}
}

func TestInsertUser_IDsIncrease(t *testing.T) {
	tx := begin(t, newTestDB(t))

	first := createTestUser(t, tx, "a")
	second := createTestUser(t, tx, "b")

	if second.ID <= first.ID {
		t.Errorf("second id %d not greater than first id %d", second.ID, first.ID)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	tx := begin(t, newTestDB(t))

	_, err := tx.GetUser(context.Background(), 999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUser() error = %v, want ErrNotFound", err)
	}
}

func TestListUsers(t *testing.T) {
	tx := begin(t, newTestDB(t))
	ctx := context.Background()

	empty, err := tx.ListUsers(ctx, repository.UserFilter{})
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("ListUsers() on empty table = %v, want empty non-nil slice", empty)
	}

	createTestUser(t, tx, "alice")
	bob := createTestUser(t, tx, "bob")
	createTestUser(t, tx, "carol")

	all, err := tx.ListUsers(ctx, repository.UserFilter{})
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListUsers() returned %d users, want 3", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].ID <= all[i-1].ID {
			t.Errorf("ListUsers() not in id order: %d after %d", all[i].ID, all[i-1].ID)
		}
	}

	slug := "bob"
	filtered, err := tx.ListUsers(ctx, repository.UserFilter{Slug: &slug})
	if err != nil {
		t.Fatalf("ListUsers(slug) error = %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != bob.ID {
		t.Errorf("ListUsers(slug=bob) = %+v, want only user %d", filtered, bob.ID)
	}
}

func TestUpdateUser(t *testing.T) {
	tx := begin(t, newTestDB(t))
	ctx := context.Background()
	user := createTestUser(t, tx, "bob")

	changed := &model.User{
		ID:        user.ID,
		Username:  "ignored",
		Firstname: "Robert",
		Lastname:  "Smith",
		Age:       31,
		Slug:      "ignored",
	}
	if err := tx.UpdateUser(ctx, changed); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}

	found, err := tx.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if found.Firstname != "Robert" || found.Lastname != "Smith" || found.Age != 31 {
		t.Errorf("GetUser() = %+v, want updated name and age", *found)
	}
	// username and slug are not part of the UPDATE.
	if found.Username != "bob" || found.Slug != "bob" {
		t.Errorf("username/slug = %q/%q, want bob/bob", found.Username, found.Slug)
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	tx := begin(t, newTestDB(t))

	err := tx.UpdateUser(context.Background(), &model.User{ID: 42, Firstname: "x"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateUser() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteUser(t *testing.T) {
	tx := begin(t, newTestDB(t))
	ctx := context.Background()
	user := createTestUser(t, tx, "bob")

	if err := tx.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if _, err := tx.GetUser(ctx, user.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("after delete: error = %v, want ErrNotFound", err)
	}
	if err := tx.DeleteUser(ctx, user.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second DeleteUser() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteUser_WithTasksViolatesForeignKey(t *testing.T) {
	tx := begin(t, newTestDB(t))
	ctx := context.Background()
	user := createTestUser(t, tx, "bob")
	createTestTask(t, tx, user.ID, "chore")

	err := tx.DeleteUser(ctx, user.ID)
	if err == nil {
		t.Fatal("DeleteUser() should fail while the user still owns tasks")
	}
	if errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteUser() error = %v, want a constraint error, not NotFound", err)
	}
}
