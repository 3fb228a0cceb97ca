package models

import "time"

const (
	SubscriptionStatusActive  = "active"
	SubscriptionStatusExpired = "expired"
)

// Subscription grants tip access for a paid period. TransactionID is a
// non-owning back-reference to the payment that produced it; the table keeps
// a unique key on it so a replayed callback can never activate twice.
type Subscription struct {
	ID            int        `json:"id"`
	UserID        int        `json:"user_id"`
	PackageID     int        `json:"package_id"`
	TransactionID int        `json:"transaction_id"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       time.Time  `json:"end_date"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// SubscriptionSummary is the profile-page snapshot.
type SubscriptionSummary struct {
	Active        bool       `json:"active"`
	RemainingDays int        `json:"remaining_days"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	Package       *Package   `json:"package,omitempty"`
}
