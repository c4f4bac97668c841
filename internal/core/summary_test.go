package core

import (
	"sort"
	"testing"
	"time"
)

func mkTx(typ TransactionType, amount float64, category string, date string) Transaction {
	d, _ := time.Parse(DateLayout, date)
	return Transaction{Type: typ, Amount: amount, Category: category, Date: d}
}

func TestSummarizeTotals(t *testing.T) {
	items := []Transaction{
		mkTx(TypeIncome, 100, "Work", "2025-03-01"),
		mkTx(TypeExpense, 40, "Food", "2025-03-02"),
		mkTx(TypeIncome, 20, "Work", "2025-03-03"),
	}
	s := Summarize(items)
	if s.TotalIncome != 120 {
		t.Fatalf("totalIncome = %v, want 120", s.TotalIncome)
	}
	if s.TotalExpense != 40 {
		t.Fatalf("totalExpense = %v, want 40", s.TotalExpense)
	}
	if s.Balance != 80 {
		t.Fatalf("balance = %v, want 80", s.Balance)
	}
}

// Income and expense sum into one bucket per category. Documented product
// behavior, preserved on purpose.
func TestSummarizeByCategoryMixesTypes(t *testing.T) {
	items := []Transaction{
		mkTx(TypeIncome, 100, "Side gig", "2025-03-01"),
		mkTx(TypeExpense, 30, "Side gig", "2025-03-02"),
		mkTx(TypeExpense, 10, "Food", "2025-03-02"),
	}
	s := Summarize(items)
	if got := s.ByCategory["Side gig"]; got != 130 {
		t.Fatalf("ByCategory[Side gig] = %v, want 130", got)
	}
	if got := s.ByCategory["Food"]; got != 10 {
		t.Fatalf("ByCategory[Food] = %v, want 10", got)
	}
}

func TestSummarizeByDateSortedAscending(t *testing.T) {
	// Items arrive most-recent-first, the way the list endpoint returns
	// them. The series must still come out in ascending date order.
	items := []Transaction{
		mkTx(TypeExpense, 5, "Food", "2025-03-03"),
		mkTx(TypeIncome, 50, "Work", "2025-03-01"),
		mkTx(TypeExpense, 7, "Food", "2025-03-02"),
		mkTx(TypeIncome, 3, "Work", "2025-03-02"),
	}
	s := Summarize(items)

	if len(s.ByDate) != 3 {
		t.Fatalf("expected 3 days, got %d", len(s.ByDate))
	}
	if !sort.SliceIsSorted(s.ByDate, func(i, j int) bool { return s.ByDate[i].Date < s.ByDate[j].Date }) {
		t.Fatalf("ByDate not sorted ascending: %+v", s.ByDate)
	}
	mid := s.ByDate[1]
	if mid.Date != "2025-03-02" || mid.Income != 3 || mid.Expense != 7 {
		t.Fatalf("day 2025-03-02 = %+v, want income=3 expense=7", mid)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalIncome != 0 || s.TotalExpense != 0 || s.Balance != 0 {
		t.Fatalf("empty summary totals non-zero: %+v", s)
	}
	if len(s.ByCategory) != 0 || len(s.ByDate) != 0 {
		t.Fatalf("empty summary has buckets: %+v", s)
	}
}
