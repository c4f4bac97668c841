package core

import (
	"errors"
	"testing"
	"time"
)

func strPtr(s string) *string     { return &s }
func numPtr(f float64) *float64   { return &f }

func validInput() Input {
	return Input{
		Type:        strPtr("income"),
		Amount:      numPtr(100),
		Description: strPtr("salary"),
		Category:    strPtr("Work"),
		Date:        strPtr("2025-03-10"),
	}
}

func TestValidateFull(t *testing.T) {
	tx, err := ValidateFull(validInput())
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if tx.Type != TypeIncome || tx.Amount != 100 || tx.Category != "Work" {
		t.Fatalf("unexpected normalized transaction: %+v", tx)
	}
	if got := tx.Date.Format(DateLayout); got != "2025-03-10" {
		t.Fatalf("date = %s, want 2025-03-10", got)
	}
}

func TestValidateFullDescriptionDefaultsEmpty(t *testing.T) {
	in := validInput()
	in.Description = nil
	tx, err := ValidateFull(in)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if tx.Description != "" {
		t.Fatalf("description = %q, want empty", tx.Description)
	}
}

// Each payload violating exactly one rule must produce exactly one field
// error, for that field only.
func TestValidateFullSingleFieldErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Input)
		field  string
	}{
		{"missing type", func(in *Input) { in.Type = nil }, "type"},
		{"bad type", func(in *Input) { in.Type = strPtr("transfer") }, "type"},
		{"missing amount", func(in *Input) { in.Amount = nil }, "amount"},
		{"negative amount", func(in *Input) { in.Amount = numPtr(-5) }, "amount"},
		{"zero amount", func(in *Input) { in.Amount = numPtr(0) }, "amount"},
		{"missing category", func(in *Input) { in.Category = nil }, "category"},
		{"blank category", func(in *Input) { in.Category = strPtr("   ") }, "category"},
		{"missing date", func(in *Input) { in.Date = nil }, "date"},
		{"bad date", func(in *Input) { in.Date = strPtr("not-a-date") }, "date"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)

			_, err := ValidateFull(in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(verr.Fields) != 1 {
				t.Fatalf("expected exactly one field error, got %+v", verr.Fields)
			}
			if verr.Fields[0].Field != tc.field {
				t.Fatalf("field = %s, want %s", verr.Fields[0].Field, tc.field)
			}
		})
	}
}

func TestValidateFullErrorOrdering(t *testing.T) {
	// Everything missing: errors come back in declaration order.
	_, err := ValidateFull(Input{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{"type", "amount", "category", "date"}
	if len(verr.Fields) != len(want) {
		t.Fatalf("expected %d errors, got %+v", len(want), verr.Fields)
	}
	for i, f := range verr.Fields {
		if f.Field != want[i] {
			t.Fatalf("error %d field = %s, want %s", i, f.Field, want[i])
		}
	}
}

func TestValidatePartial(t *testing.T) {
	p, err := ValidatePartial(Input{Amount: numPtr(42.5)})
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if p.Amount == nil || *p.Amount != 42.5 {
		t.Fatalf("amount patch = %+v, want 42.5", p.Amount)
	}
	if p.Type != nil || p.Category != nil || p.Date != nil || p.Description != nil {
		t.Fatalf("absent fields must stay nil: %+v", p)
	}
}

func TestValidatePartialChecksPresentFieldsOnly(t *testing.T) {
	// An invalid amount must fail even though everything else is absent.
	_, err := ValidatePartial(Input{Amount: numPtr(-1)})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 1 || verr.Fields[0].Field != "amount" {
		t.Fatalf("unexpected errors: %+v", verr.Fields)
	}

	// An empty patch is valid; the store decides what to do with it.
	p, err := ValidatePartial(Input{})
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !p.IsEmpty() {
		t.Fatalf("expected empty patch, got %+v", p)
	}
}

func TestParseDateAcceptsRFC3339(t *testing.T) {
	p, err := ValidatePartial(Input{Date: strPtr("2025-03-10T15:04:05Z")})
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	want := time.Date(2025, 3, 10, 15, 4, 5, 0, time.UTC)
	if p.Date == nil || !p.Date.Equal(want) {
		t.Fatalf("date = %v, want %v", p.Date, want)
	}
}
