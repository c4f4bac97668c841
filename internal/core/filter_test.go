package core

import (
	"testing"
	"time"
)

func TestFilterNormalize(t *testing.T) {
	cases := []struct {
		name      string
		in        Filter
		max       int
		page, lim int
	}{
		{"defaults", Filter{}, 0, 1, DefaultPageSize},
		{"explicit", Filter{Page: 3, Limit: 5}, 0, 3, 5},
		{"negative page", Filter{Page: -2, Limit: 5}, 0, 1, 5},
		{"zero limit", Filter{Page: 2}, 0, 2, DefaultPageSize},
		{"clamped", Filter{Page: 1, Limit: 5000}, 100, 1, 100},
		{"no ceiling", Filter{Page: 1, Limit: 5000}, 0, 1, 5000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := tc.in.Normalize(tc.max)
			if f.Page != tc.page || f.Limit != tc.lim {
				t.Fatalf("got page=%d limit=%d, want page=%d limit=%d", f.Page, f.Limit, tc.page, tc.lim)
			}
		})
	}
}

func TestFilterWindow(t *testing.T) {
	skip, take := (Filter{Page: 1, Limit: 10}).Window()
	if skip != 0 || take != 10 {
		t.Fatalf("page 1: got (%d,%d), want (0,10)", skip, take)
	}
	skip, take = (Filter{Page: 3, Limit: 5}).Window()
	if skip != 10 || take != 5 {
		t.Fatalf("page 3: got (%d,%d), want (10,5)", skip, take)
	}
}

func TestFilterMatches(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }
	tx := Transaction{Type: TypeIncome, Category: "Groceries", Date: day(15)}

	cases := []struct {
		name string
		f    Filter
		want bool
	}{
		{"empty filter", Filter{}, true},
		{"type all", Filter{Type: TypeAll}, true},
		{"type match", Filter{Type: "income"}, true},
		{"type mismatch", Filter{Type: "expense"}, false},
		{"category substring", Filter{Category: "groc"}, true},
		{"category case-insensitive", Filter{Category: "GROCERIES"}, true},
		{"category miss", Filter{Category: "rent"}, false},
		{"range inclusive start", Filter{StartDate: day(15)}, true},
		{"range inclusive end", Filter{EndDate: day(15)}, true},
		{"before range", Filter{StartDate: day(16)}, false},
		{"after range", Filter{EndDate: day(14)}, false},
		{"full range", Filter{StartDate: day(1), EndDate: day(31)}, true},
		{"intersection", Filter{Type: "income", Category: "groc"}, true},
		{"intersection miss", Filter{Type: "expense", Category: "groc"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.f.Matches(tx); got != tc.want {
				t.Fatalf("Matches = %v, want %v", got, tc.want)
			}
		})
	}
}
