package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fintrack/internal/core"
)

func TestBuildFilterEmpty(t *testing.T) {
	q := buildFilter(core.Filter{})
	if len(q) != 0 {
		t.Fatalf("expected empty predicate, got %v", q)
	}
	// "all" must not constrain the type either.
	q = buildFilter(core.Filter{Type: core.TypeAll})
	if len(q) != 0 {
		t.Fatalf("type=all must not constrain, got %v", q)
	}
}

func TestBuildFilterType(t *testing.T) {
	q := buildFilter(core.Filter{Type: "income"})
	if got := q["type"]; got != "income" {
		t.Fatalf("type predicate = %v, want income", got)
	}
}

func TestBuildFilterCategoryRegex(t *testing.T) {
	q := buildFilter(core.Filter{Category: "gro"})
	re, ok := q["category"].(primitive.Regex)
	if !ok {
		t.Fatalf("category predicate is %T, want primitive.Regex", q["category"])
	}
	if re.Pattern != "gro" || re.Options != "i" {
		t.Fatalf("regex = %+v, want case-insensitive 'gro'", re)
	}

	// Metacharacters in the search string must be quoted, not interpreted.
	q = buildFilter(core.Filter{Category: "a.b"})
	re = q["category"].(primitive.Regex)
	if re.Pattern != `a\.b` {
		t.Fatalf("pattern = %q, want quoted metachars", re.Pattern)
	}
}

func TestBuildFilterDateRange(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	q := buildFilter(core.Filter{StartDate: start, EndDate: end})
	dateRange, ok := q["date"].(bson.M)
	if !ok {
		t.Fatalf("date predicate is %T, want bson.M", q["date"])
	}
	if dateRange["$gte"] != start || dateRange["$lte"] != end {
		t.Fatalf("range = %v, want gte %v lte %v", dateRange, start, end)
	}

	// Either bound alone must produce a half-open range.
	q = buildFilter(core.Filter{StartDate: start})
	dateRange = q["date"].(bson.M)
	if _, ok := dateRange["$lte"]; ok {
		t.Fatalf("unexpected upper bound in %v", dateRange)
	}
}

func TestDocumentToCore(t *testing.T) {
	oid := primitive.NewObjectID()
	d := document{
		ID:          oid,
		Type:        "expense",
		Amount:      12.5,
		Description: "coffee",
		Category:    "Food",
		Date:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	tx := d.toCore()
	if tx.ID != oid.Hex() {
		t.Fatalf("id = %s, want %s", tx.ID, oid.Hex())
	}
	if tx.Type != core.TypeExpense || tx.Amount != 12.5 || tx.Category != "Food" {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
}
