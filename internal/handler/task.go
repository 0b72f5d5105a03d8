package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/task-manager/internal/model"
)

// TaskService is what TaskHandler needs from the service layer.
type TaskService interface {
	List(ctx context.Context) ([]model.Task, error)
	GetByID(ctx context.Context, id int64) (*model.Task, error)
	Create(ctx context.Context, ownerID int64, title, content string, priority int) (*model.Task, error)
	Update(ctx context.Context, id int64, title, content string, priority int) error
	Delete(ctx context.Context, id int64) error
}

// TaskHandler serves the /tasks routes.
type TaskHandler struct {
	tasks  TaskService
	logger *slog.Logger
}

func NewTaskHandler(tasks TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

// HandleList serves GET /tasks/.
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// HandleGetByID serves GET /tasks/{id}.
func (h *TaskHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	task, err := h.tasks.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// HandleCreate serves POST /tasks/create?user_id={id}.
// REQUEST BODY: {"title": "Buy milk", "content": "", "priority": 1}
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ownerID, err := parseID("user_id", r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req CreateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("invalid create task request", slog.String("error", err.Error()))
		writeError(w, h.logger, err)
		return
	}

	if _, err := h.tasks.Create(r.Context(), ownerID, req.Title, req.Content, req.Priority); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeAck(w, http.StatusCreated, "Successful")
}

// HandleUpdate serves PUT /tasks/update/{id}. All three fields are required.
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req UpdateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("invalid update task request", slog.String("error", err.Error()))
		writeError(w, h.logger, err)
		return
	}

	if err := h.tasks.Update(r.Context(), id, *req.Title, *req.Content, *req.Priority); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeAck(w, http.StatusOK, "Task update is successful!")
}

// HandleDelete serves DELETE /tasks/delete/{id}.
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.tasks.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeAck(w, http.StatusOK, "Task deletion is successful!")
}
