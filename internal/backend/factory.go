// Package backend selects and constructs the configured transaction store.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/config"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
	"fintrack/internal/storage/mongo"
	"fintrack/internal/storage/sqlite"
)

// Type identifies a storage backend.
type Type string

const (
	Memory Type = "memory"
	Mongo  Type = "mongo"
	SQLite Type = "sqlite"
)

// IsValid returns true if the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case Memory, Mongo, SQLite:
		return true
	default:
		return false
	}
}

func (t Type) String() string { return string(t) }

// Open constructs the repository named by cfg.DataBackend. The returned
// cleanup func releases the backend's resources and is safe to call once.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Repository, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}

	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return nil, nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch t {
	case Mongo:
		repo, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize mongo backend: %w", err)
		}
		logger.Info("Initialized mongo backend", "database", cfg.MongoDatabase)
		return repo, repo.Close, nil

	case SQLite:
		repo, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		logger.Info("Initialized sqlite backend", "db_path", cfg.SQLiteDBPath)
		return repo, repo.Close, nil

	default:
		store := memory.New()
		logger.Info("Initialized memory backend")
		return store, store.Close, nil
	}
}
