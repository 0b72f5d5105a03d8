// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the composition root. It opens the store, builds the
// services and handlers on top of it, and decides which URL maps to which
// handler. Nothing below this package knows about the others' concrete types:
//
//	sqlite.DB (repository.Store) → UserService / TaskService → UserHandler / TaskHandler
//
// Keeping this out of main.go means tests can build the whole stack with New
// and drive it through Handler() without opening a socket.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/task-manager/internal/handler"
	"github.com/sakif/task-manager/internal/middleware"
	sqliteRepo "github.com/sakif/task-manager/internal/repository/sqlite"
	"github.com/sakif/task-manager/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port int
	// ShutdownTimeout bounds how long in-flight requests get after SIGINT/SIGTERM.
	ShutdownTimeout time.Duration
	Database        sqliteRepo.Config
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection pool. Start closes it on the way
// out; callers that never Start (tests) call Close.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the store and wires every route.
//
// IMPORT ALIAS:
// repository/sqlite is imported as sqliteRepo so it can't be confused with the
// modernc.org/sqlite driver it wraps.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}

	db, err := sqliteRepo.New(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes()

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /healthz               → store reachability
// GET    /tasks/                → list tasks
// GET    /tasks/{id}            → one task
// POST   /tasks/create?user_id= → create a task owned by user_id
// PUT    /tasks/update/{id}     → replace title, content, priority
// DELETE /tasks/delete/{id}     → delete a task
// GET    /users/                → list users
// GET    /users/{id}            → one user
// POST   /users/create          → create a user
// PUT    /users/update/{id}     → replace firstname, lastname, age
// GET    /users/{id}/tasks      → tasks owned by a user
// DELETE /users/delete/{id}     → delete a user and all of their tasks
//
// MIDDLEWARE ORDER MATTERS:
// RequestID runs first so the Logger can report the id; Recoverer sits inside
// the Logger so a recovered panic is still logged as a 500.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	s.router.Get("/healthz", handler.HandleHealth(s.db, s.logger))

	taskService := service.NewTaskService(s.db, s.logger)
	userService := service.NewUserService(s.db, s.logger)

	taskHandler := handler.NewTaskHandler(taskService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)

	s.router.Route("/tasks", func(r chi.Router) {
		r.Get("/", taskHandler.HandleList)
		r.Get("/{id}", taskHandler.HandleGetByID)
		r.Post("/create", taskHandler.HandleCreate)
		r.Put("/update/{id}", taskHandler.HandleUpdate)
		r.Delete("/delete/{id}", taskHandler.HandleDelete)
	})

	s.router.Route("/users", func(r chi.Router) {
		r.Get("/", userHandler.HandleList)
		r.Get("/{id}", userHandler.HandleGetByID)
		r.Get("/{id}/tasks", userHandler.HandleListTasks)
		r.Post("/create", userHandler.HandleCreate)
		r.Put("/update/{id}", userHandler.HandleUpdate)
		r.Delete("/delete/{id}", userHandler.HandleDelete)
	})
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Only needed when Start is never called.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait up to ShutdownTimeout for in-flight requests (and their units of work)
// 3. Close the database (checkpoints the WAL, releases the file)
func (s *Server) Start() error {
	defer func() {
		if err := s.db.Close(); err != nil {
			s.logger.Error("closing database", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.Database.Path),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
