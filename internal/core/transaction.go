package core

import "time"

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// DateLayout is the wire format for transaction dates.
const DateLayout = "2006-01-02"

type (
	TransactionType string

	// Transaction is the sole persisted entity: one income or expense
	// record. ID and the timestamps are assigned by the store.
	Transaction struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type"`
		Amount      float64         `json:"amount"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		Date        time.Time       `json:"date"`
		CreatedAt   time.Time       `json:"createdAt"`
		UpdatedAt   time.Time       `json:"updatedAt"`
	}
)

// IsValid reports whether t is one of the two enumerated values.
func (t TransactionType) IsValid() bool {
	return t == TypeIncome || t == TypeExpense
}

func (t TransactionType) String() string {
	return string(t)
}

// Day truncates the transaction date to its calendar day in UTC.
// Aggregation buckets by this value.
func (tx Transaction) Day() time.Time {
	y, m, d := tx.Date.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
