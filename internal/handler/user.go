package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/task-manager/internal/model"
)

// UserService is what UserHandler needs from the service layer.
type UserService interface {
	List(ctx context.Context) ([]model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	Create(ctx context.Context, username, firstname, lastname string, age int) (*model.User, error)
	Update(ctx context.Context, id int64, firstname, lastname string, age int) error
	ListTasks(ctx context.Context, id int64) ([]model.Task, error)
	Delete(ctx context.Context, id int64) error
}

// UserHandler serves the /users routes.
type UserHandler struct {
	users  UserService
	logger *slog.Logger
}

func NewUserHandler(users UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleList serves GET /users/.
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleGetByID serves GET /users/{id}.
func (h *UserHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleCreate serves POST /users/create.
// REQUEST BODY: {"username": "bob", "firstname": "Bob", "lastname": "Builder", "age": 40}
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("invalid create user request", slog.String("error", err.Error()))
		writeError(w, h.logger, err)
		return
	}

	if _, err := h.users.Create(r.Context(), req.Username, req.Firstname, req.Lastname, req.Age); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeAck(w, http.StatusCreated, "Successful")
}

// HandleUpdate serves PUT /users/update/{id}.
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("invalid update user request", slog.String("error", err.Error()))
		writeError(w, h.logger, err)
		return
	}

	if err := h.users.Update(r.Context(), id, *req.Firstname, *req.Lastname, *req.Age); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeAck(w, http.StatusOK, "User update is successful!")
}

// HandleListTasks serves GET /users/{id}/tasks.
func (h *UserHandler) HandleListTasks(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	tasks, err := h.users.ListTasks(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// HandleDelete serves DELETE /users/delete/{id}. The user's tasks go with them.
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeAck(w, http.StatusOK, "User and related tasks deletion is successful!")
}
