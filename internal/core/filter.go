package core

import (
	"strings"
	"time"
)

// DefaultPageSize is used when a list request does not specify a limit.
const DefaultPageSize = 10

// TypeAll disables the type constraint when used as Filter.Type.
const TypeAll = "all"

// Filter holds the query constraints and pagination cursor for a list
// request. Zero values mean "no constraint".
type Filter struct {
	Type      string
	Category  string
	StartDate time.Time
	EndDate   time.Time
	Page      int
	Limit     int
}

// Normalize coerces page and limit to positive integers, applying the
// default page size and clamping limit to max when max > 0.
func (f Filter) Normalize(max int) Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if max > 0 && f.Limit > max {
		f.Limit = max
	}
	return f
}

// Window returns the (skip, take) pair for the normalized filter.
func (f Filter) Window() (skip, take int) {
	return (f.Page - 1) * f.Limit, f.Limit
}

// HasType reports whether the filter constrains the transaction type.
// A value of "all" or an empty string means no restriction.
func (f Filter) HasType() bool {
	return f.Type != "" && f.Type != TypeAll
}

// Matches reports whether tx satisfies the filter constraints (pagination
// excluded). The category match is a case-insensitive substring match and
// the date bounds are inclusive.
func (f Filter) Matches(tx Transaction) bool {
	if f.HasType() && string(tx.Type) != f.Type {
		return false
	}
	if f.Category != "" && !strings.Contains(strings.ToLower(tx.Category), strings.ToLower(f.Category)) {
		return false
	}
	if !f.StartDate.IsZero() && tx.Date.Before(f.StartDate) {
		return false
	}
	if !f.EndDate.IsZero() && tx.Date.After(f.EndDate) {
		return false
	}
	return true
}
