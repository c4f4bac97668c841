// Package storage defines the persistence contract shared by all backends.
package storage

import (
	"context"
	"errors"

	"fintrack/internal/core"
)

// ErrNotFound is returned when an id does not resolve to a stored
// transaction. Updates and deletes on an absent id always fail with it
// rather than silently succeeding.
var ErrNotFound = errors.New("transaction not found")

// Repository is the CRUD contract over the transaction store. List applies
// the filter constraints plus skip/limit pagination and reports the total
// count under the same constraints (unpaginated). Results are ordered by
// date descending with id descending as the tiebreak, so pagination is
// reproducible.
type Repository interface {
	List(ctx context.Context, f core.Filter) (items []core.Transaction, total int64, err error)
	Create(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	Update(ctx context.Context, id string, p core.Patch) (core.Transaction, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (core.Transaction, error)
	Close() error
}
