// Package service contains the business operations on users and tasks.
//
//	Handler (HTTP)  → parses requests, writes responses
//	Service         → validates, enforces relations, owns the unit of work
//	Repository      → reads/writes the tables
//
// Every public method runs in exactly one unit of work taken from the
// repository.Store, and always ends it: Commit on success, Rollback on every
// other path (the deferred Rollback is a no-op once Commit has succeeded).
// Methods that only read take a read unit of work instead.
// Services know nothing about HTTP; they return *apperror.AppError kinds and
// let the handler pick status codes.
package service

import (
	"context"
	"log/slog"

	"github.com/gosimple/slug"

	"github.com/sakif/task-manager/internal/repository"
)

// inTx runs fn inside a fresh unit of work and commits if fn succeeds.
// fn's error is returned as is, so apperror kinds survive.
func inTx(ctx context.Context, store repository.Store, logger *slog.Logger, fn func(tx repository.Tx) error) error {
	tx, err := store.Begin(ctx)
	if err != nil {
		return err
	}
	defer rollback(tx, logger)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// inReadTx runs fn inside a read-only unit of work, which is always rolled
// back. Lookups and lists go through here so they never queue behind a writer.
func inReadTx(ctx context.Context, store repository.Store, logger *slog.Logger, fn func(tx repository.Tx) error) error {
	tx, err := store.BeginRead(ctx)
	if err != nil {
		return err
	}
	defer rollback(tx, logger)

	return fn(tx)
}

// rollback ends tx if it is still open. Meant to be deferred.
func rollback(tx repository.Tx, logger *slog.Logger) {
	if err := tx.Rollback(); err != nil {
		logger.Warn("rollback failed",
			slog.String("uow", tx.ID()),
			slog.String("error", err.Error()),
		)
	}
}

// makeSlug turns a display name into a lowercase, hyphen-separated URL token:
// "Buy milk" → "buy-milk". It is computed once, at creation.
func makeSlug(text string) string {
	return slug.Make(text)
}
