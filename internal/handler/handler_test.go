package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sakif/task-manager/internal/handler"
	"github.com/sakif/task-manager/internal/model"
)

// =========================================================================
// MOCK SERVICES
// =========================================================================

type mockTaskService struct{ mock.Mock }

func (m *mockTaskService) List(ctx context.Context) ([]model.Task, error) {
	args := m.Called(ctx)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Error(1)
}

func (m *mockTaskService) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	args := m.Called(ctx, id)
	task, _ := args.Get(0).(*model.Task)
	return task, args.Error(1)
}

func (m *mockTaskService) Create(ctx context.Context, ownerID int64, title, content string, priority int) (*model.Task, error) {
	args := m.Called(ctx, ownerID, title, content, priority)
	task, _ := args.Get(0).(*model.Task)
	return task, args.Error(1)
}

func (m *mockTaskService) Update(ctx context.Context, id int64, title, content string, priority int) error {
	return m.Called(ctx, id, title, content, priority).Error(0)
}

func (m *mockTaskService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockUserService struct{ mock.Mock }

func (m *mockUserService) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *mockUserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *mockUserService) Create(ctx context.Context, username, firstname, lastname string, age int) (*model.User, error) {
	args := m.Called(ctx, username, firstname, lastname, age)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *mockUserService) Update(ctx context.Context, id int64, firstname, lastname string, age int) error {
	return m.Called(ctx, id, firstname, lastname, age).Error(0)
}

func (m *mockUserService) ListTasks(ctx context.Context, id int64) ([]model.Task, error) {
	args := m.Called(ctx, id)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Error(1)
}

func (m *mockUserService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// =========================================================================
// HELPERS
// =========================================================================

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newRequest builds a request with {id} set the way chi's router would.
func newRequest(method, target, id, body string) *http.Request {
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if id != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	return req
}

func decodeAck(t *testing.T, rr *httptest.ResponseRecorder) handler.Ack {
	t.Helper()
	var ack handler.Ack
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&ack))
	return ack
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}
