package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/config"
)

func TestTypeIsValid(t *testing.T) {
	for _, valid := range []Type{Memory, Mongo, SQLite} {
		if !valid.IsValid() {
			t.Fatalf("%s should be valid", valid)
		}
	}
	if Type("postgres").IsValid() {
		t.Fatalf("postgres should not be valid")
	}
}

func TestOpenMemory(t *testing.T) {
	cfg := &config.Config{DataBackend: "memory"}
	repo, cleanup, err := Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open memory backend: %v", err)
	}
	defer cleanup()
	if repo == nil {
		t.Fatal("expected repository")
	}
}

func TestOpenSQLite(t *testing.T) {
	cfg := &config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: filepath.Join(t.TempDir(), "test.db"),
	}
	repo, cleanup, err := Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open sqlite backend: %v", err)
	}
	defer cleanup()
	if repo == nil {
		t.Fatal("expected repository")
	}
}

func TestOpenUnknown(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, _, err := Open(ctx, &config.Config{DataBackend: "cassandra"}, nil); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
