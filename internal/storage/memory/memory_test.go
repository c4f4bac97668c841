package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func seed(t *testing.T, s *Store, n int) []core.Transaction {
	t.Helper()
	ctx := context.Background()
	out := make([]core.Transaction, 0, n)
	for i := 0; i < n; i++ {
		tx, err := s.Create(ctx, core.Transaction{
			Type:     core.TypeExpense,
			Amount:   float64(i + 1),
			Category: "Misc",
			Date:     time.Date(2025, 3, i+1, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("seed create: %v", err)
		}
		out = append(out, tx)
	}
	return out
}

func TestPagination(t *testing.T) {
	s := New()
	seed(t, s, 12)
	ctx := context.Background()

	items, total, err := s.List(ctx, core.Filter{Page: 2, Limit: 5}.Normalize(0))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 12 || len(items) != 5 {
		t.Fatalf("page 2: total=%d len=%d, want 12/5", total, len(items))
	}

	items, total, err = s.List(ctx, core.Filter{Page: 3, Limit: 5}.Normalize(0))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 12 || len(items) != 2 {
		t.Fatalf("page 3: total=%d len=%d, want 12/2", total, len(items))
	}

	// Beyond the last page: empty list, same total.
	items, total, err = s.List(ctx, core.Filter{Page: 9, Limit: 5}.Normalize(0))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 12 || len(items) != 0 {
		t.Fatalf("page 9: total=%d len=%d, want 12/0", total, len(items))
	}
}

func TestListOrderedByDateDescending(t *testing.T) {
	s := New()
	seed(t, s, 5)

	items, _, err := s.List(context.Background(), core.Filter{}.Normalize(0))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i := 1; i < len(items); i++ {
		if items[i].Date.After(items[i-1].Date) {
			t.Fatalf("items not in descending date order: %v before %v", items[i-1].Date, items[i].Date)
		}
	}
}

func TestSameDateTiebreakIsDeterministic(t *testing.T) {
	s := New()
	ctx := context.Background()
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	first, _ := s.Create(ctx, core.Transaction{Type: core.TypeIncome, Amount: 1, Category: "A", Date: day})
	second, _ := s.Create(ctx, core.Transaction{Type: core.TypeIncome, Amount: 2, Category: "B", Date: day})

	items, _, err := s.List(ctx, core.Filter{}.Normalize(0))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// Newer id first on equal dates.
	if items[0].ID != second.ID || items[1].ID != first.ID {
		t.Fatalf("tiebreak order wrong: got %s, %s", items[0].ID, items[1].ID)
	}
}

func TestTypeAndCategoryFilterIntersection(t *testing.T) {
	s := New()
	ctx := context.Background()
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	s.Create(ctx, core.Transaction{Type: core.TypeIncome, Amount: 10, Category: "Groceries", Date: day})
	s.Create(ctx, core.Transaction{Type: core.TypeExpense, Amount: 20, Category: "Groceries", Date: day})
	s.Create(ctx, core.Transaction{Type: core.TypeIncome, Amount: 30, Category: "Rent", Date: day})

	items, total, err := s.List(ctx, core.Filter{Type: "income", Category: "groc"}.Normalize(0))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("intersection: total=%d len=%d, want 1/1", total, len(items))
	}
	if items[0].Type != core.TypeIncome || items[0].Category != "Groceries" {
		t.Fatalf("wrong item: %+v", items[0])
	}
}

func TestUpdateChangesOnlyTargetedField(t *testing.T) {
	s := New()
	ctx := context.Background()
	created := seed(t, s, 1)[0]

	amount := 99.0
	updated, err := s.Update(ctx, created.ID, core.Patch{Amount: &amount})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Amount != 99 {
		t.Fatalf("amount = %v, want 99", updated.Amount)
	}
	if updated.Category != created.Category || updated.Type != created.Type || !updated.Date.Equal(created.Date) {
		t.Fatalf("untargeted fields changed: %+v vs %+v", updated, created)
	}
	if updated.CreatedAt != created.CreatedAt {
		t.Fatalf("createdAt must be immutable")
	}
}

func TestUpdateDeleteUnknownID(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Update(ctx, "missing", core.Patch{}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("update unknown id: got %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("delete unknown id: got %v, want ErrNotFound", err)
	}

	created := seed(t, s, 1)[0]
	if err := s.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// Repeating the delete reports not found, never a silent no-op.
	if err := s.Delete(ctx, created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
}
