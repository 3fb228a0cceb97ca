package models

import "time"

const (
	TransactionStatusPending    = "pending"
	TransactionStatusSuccessful = "successful"
	TransactionStatusFailed     = "failed"
)

// Transaction is a payment attempt. Reference is the provider-assigned
// correlation id: the inbound webhook carries it back so the callback can be
// matched to the pending row. Created at checkout, mutated once by the
// webhook reconciliation, never deleted.
type Transaction struct {
	ID          int        `json:"id"`
	Reference   string     `json:"reference"`
	UserID      int        `json:"user_id"`
	PackageID   int        `json:"package_id"`
	Amount      float64    `json:"amount"`
	Phone       string     `json:"phone"`
	Status      string     `json:"status"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}
