// Package sheets defines the export ports for spreadsheet adapters.
package sheets

import (
	"context"
	"time"

	"fintrack/internal/core"
)

// ExportRow is one line of the running export log. Every write to the
// transaction store becomes one row, including updates and deletes.
type ExportRow struct {
	Action      string
	ID          string
	Type        string
	Amount      float64
	Category    string
	Description string
	Date        string
	ExportedAt  time.Time
}

// NewExportRow builds a row from a stored transaction.
func NewExportRow(action string, tx core.Transaction) ExportRow {
	return ExportRow{
		Action:      action,
		ID:          tx.ID,
		Type:        string(tx.Type),
		Amount:      tx.Amount,
		Category:    tx.Category,
		Description: tx.Description,
		Date:        tx.Date.Format(core.DateLayout),
		ExportedAt:  time.Now().UTC(),
	}
}

// NewTombstoneRow builds a row for an action where the transaction body
// is no longer available, such as a delete.
func NewTombstoneRow(action, id string) ExportRow {
	return ExportRow{
		Action:     action,
		ID:         id,
		ExportedAt: time.Now().UTC(),
	}
}

// RowAppender is the outbound port for the export log.
type RowAppender interface {
	// AppendRow writes one row and returns an adapter-specific
	// reference to where it landed.
	AppendRow(ctx context.Context, row ExportRow) (ref string, err error)
}
