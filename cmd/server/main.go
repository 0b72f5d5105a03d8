// Package main is the entry point for the task manager server.
//
// MAIN PACKAGE IN GO:
// main stays minimal. It reads configuration, builds the logger, and hands
// both to internal/server, which owns everything else.
//
// CONFIGURATION SOURCES (lowest to highest precedence):
//  1. built-in defaults (internal/config)
//  2. a YAML file, when -config is given
//  3. environment variables, including any loaded from a .env file
package main

import (
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/sakif/task-manager/internal/config"
	sqliteRepo "github.com/sakif/task-manager/internal/repository/sqlite"
	"github.com/sakif/task-manager/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	// === 1. LOAD .env ===
	// Variables already set in the environment win over the file.
	// A missing .env is normal outside development.
	envErr := godotenv.Load()

	// === 2. READ CONFIGURATION ===
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 3. SET UP LOGGING ===
	logger := newLogger(os.Stdout, cfg.Server)
	slog.SetDefault(logger)

	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn("could not read .env file", slog.String("error", envErr.Error()))
	}

	// === 4. CREATE AND START THE SERVER ===
	srv, err := server.New(server.Config{
		Port:            cfg.Server.Port,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Database: sqliteRepo.Config{
			Path:          cfg.Database.Path,
			BusyTimeout:   cfg.Database.BusyTimeout,
			LogStatements: cfg.Database.LogStatements,
		},
	}, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
