package core

import (
	"fmt"
	"strings"
	"time"
)

// Input is a raw transaction payload as received from a caller. Pointer
// fields distinguish "absent" from "zero" so the same shape serves both
// create (full validation) and update (partial validation).
type Input struct {
	Type        *string  `json:"type"`
	Amount      *float64 `json:"amount"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Date        *string  `json:"date"`
}

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries the ordered list of field errors produced by
// validating an Input. It is client-correctable.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "invalid transaction data: " + strings.Join(parts, "; ")
}

// Patch is a validated partial update. Nil fields are left untouched by
// the store.
type Patch struct {
	Type        *TransactionType
	Amount      *float64
	Description *string
	Category    *string
	Date        *time.Time
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Type == nil && p.Amount == nil && p.Description == nil &&
		p.Category == nil && p.Date == nil
}

// ValidateFull checks every required field and returns a normalized
// Transaction ready for insertion (ID and timestamps unset). The error,
// when non-nil, is always a *ValidationError with at least one field.
func ValidateFull(in Input) (Transaction, error) {
	var (
		tx   Transaction
		errs []FieldError
	)

	if in.Type == nil {
		errs = append(errs, FieldError{Field: "type", Message: "transaction type is required"})
	} else if t := TransactionType(*in.Type); !t.IsValid() {
		errs = append(errs, FieldError{Field: "type", Message: "type must be income or expense"})
	} else {
		tx.Type = t
	}

	if in.Amount == nil {
		errs = append(errs, FieldError{Field: "amount", Message: "amount is required"})
	} else if *in.Amount <= 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "amount must be positive"})
	} else {
		tx.Amount = *in.Amount
	}

	// Description is optional and defaults to empty.
	if in.Description != nil {
		tx.Description = strings.TrimSpace(*in.Description)
	}

	if in.Category == nil || strings.TrimSpace(*in.Category) == "" {
		errs = append(errs, FieldError{Field: "category", Message: "category is required"})
	} else {
		tx.Category = strings.TrimSpace(*in.Category)
	}

	if in.Date == nil {
		errs = append(errs, FieldError{Field: "date", Message: "date is required"})
	} else if d, err := parseDate(*in.Date); err != nil {
		errs = append(errs, FieldError{Field: "date", Message: "invalid date format"})
	} else {
		tx.Date = d
	}

	if len(errs) > 0 {
		return Transaction{}, &ValidationError{Fields: errs}
	}
	return tx, nil
}

// ValidatePartial checks only the fields present in the input against the
// same per-field rules; absent fields are ignored, not defaulted.
func ValidatePartial(in Input) (Patch, error) {
	var (
		p    Patch
		errs []FieldError
	)

	if in.Type != nil {
		if t := TransactionType(*in.Type); !t.IsValid() {
			errs = append(errs, FieldError{Field: "type", Message: "type must be income or expense"})
		} else {
			p.Type = &t
		}
	}

	if in.Amount != nil {
		if *in.Amount <= 0 {
			errs = append(errs, FieldError{Field: "amount", Message: "amount must be positive"})
		} else {
			p.Amount = in.Amount
		}
	}

	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		p.Description = &desc
	}

	if in.Category != nil {
		if strings.TrimSpace(*in.Category) == "" {
			errs = append(errs, FieldError{Field: "category", Message: "category cannot be empty"})
		} else {
			cat := strings.TrimSpace(*in.Category)
			p.Category = &cat
		}
	}

	if in.Date != nil {
		if d, err := parseDate(*in.Date); err != nil {
			errs = append(errs, FieldError{Field: "date", Message: "invalid date format"})
		} else {
			p.Date = &d
		}
	}

	if len(errs) > 0 {
		return Patch{}, &ValidationError{Fields: errs}
	}
	return p, nil
}

// parseDate accepts a plain calendar date or a full RFC 3339 timestamp,
// matching what browser clients send.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d, nil
	}
	if d, err := time.Parse(time.RFC3339, s); err == nil {
		return d.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("parse date %q: unsupported format", s)
}
