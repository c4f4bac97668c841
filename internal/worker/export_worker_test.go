package worker

import (
	"context"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/events"
	sheetsmem "fintrack/internal/sheets/memory"
	"fintrack/internal/storage/memory"
)

func seedRepo(t *testing.T, repo *memory.Store, n int) []core.Transaction {
	t.Helper()

	out := make([]core.Transaction, 0, n)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		tx, err := repo.Create(context.Background(), core.Transaction{
			Type:     core.TypeExpense,
			Amount:   float64(i + 1),
			Category: "Food",
			Date:     base.AddDate(0, 0, i),
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		out = append(out, tx)
	}
	return out
}

func TestHandleEventCreated(t *testing.T) {
	repo := memory.New()
	sink := sheetsmem.New()
	w := NewExportWorker(repo, sink, 10)

	txs := seedRepo(t, repo, 1)
	e := events.NewTransactionEvent(events.ActionCreated, txs[0].ID)

	if err := w.HandleEvent(context.Background(), e); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	rows := sink.Rows()
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0].Action != events.ActionCreated || rows[0].ID != txs[0].ID {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
	if rows[0].Amount != 1 || rows[0].Category != "Food" {
		t.Fatalf("row body mismatch: %+v", rows[0])
	}
}

func TestHandleEventDeletedWritesTombstone(t *testing.T) {
	repo := memory.New()
	sink := sheetsmem.New()
	w := NewExportWorker(repo, sink, 10)

	e := events.NewTransactionEvent(events.ActionDeleted, "000000000000000000000001")
	if err := w.HandleEvent(context.Background(), e); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	rows := sink.Rows()
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0].Action != events.ActionDeleted || rows[0].Type != "" {
		t.Fatalf("tombstone row mismatch: %+v", rows[0])
	}
}

func TestHandleEventVanishedTransaction(t *testing.T) {
	repo := memory.New()
	sink := sheetsmem.New()
	w := NewExportWorker(repo, sink, 10)

	e := events.NewTransactionEvent(events.ActionUpdated, "000000000000000000000042")
	if err := w.HandleEvent(context.Background(), e); err != nil {
		t.Fatalf("vanished transaction should not requeue: %v", err)
	}
	if len(sink.Rows()) != 0 {
		t.Fatal("no row expected for vanished transaction")
	}
}

func TestCatchUpExportsBacklogOnce(t *testing.T) {
	repo := memory.New()
	sink := sheetsmem.New()
	w := NewExportWorker(repo, sink, 2)

	seedRepo(t, repo, 5)

	n, err := w.CatchUp(context.Background())
	if err != nil {
		t.Fatalf("CatchUp: %v", err)
	}
	if n != 5 {
		t.Fatalf("exported = %d, want 5", n)
	}
	if len(sink.Rows()) != 5 {
		t.Fatalf("len(rows) = %d, want 5", len(sink.Rows()))
	}

	// Second pass finds nothing new.
	n, err = w.CatchUp(context.Background())
	if err != nil {
		t.Fatalf("CatchUp: %v", err)
	}
	if n != 0 {
		t.Fatalf("second pass exported = %d, want 0", n)
	}
}

func TestCatchUpSkipsEventExported(t *testing.T) {
	repo := memory.New()
	sink := sheetsmem.New()
	w := NewExportWorker(repo, sink, 10)

	txs := seedRepo(t, repo, 2)

	e := events.NewTransactionEvent(events.ActionCreated, txs[0].ID)
	if err := w.HandleEvent(context.Background(), e); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	n, err := w.CatchUp(context.Background())
	if err != nil {
		t.Fatalf("CatchUp: %v", err)
	}
	if n != 1 {
		t.Fatalf("exported = %d, want 1 (the other transaction)", n)
	}
}
