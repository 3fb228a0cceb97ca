package models

import "time"

const (
	TipResultPending = "pending"
	TipResultWon     = "won"
	TipResultLost    = "lost"
)

// Tip is a published prediction for a specific match. Free tips are visible
// to everyone; premium tips are shown in full only to active subscribers.
type Tip struct {
	ID          int        `json:"id"`
	MatchID     int        `json:"match_id"`
	Prediction  string     `json:"prediction"`
	Market      string     `json:"market"`
	Odds        float64    `json:"odds"`
	IsFree      bool       `json:"is_free"`
	Result      string     `json:"result"`
	ImageURL    string     `json:"image_url,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`

	// Locked is set on premium tips served to non-subscribers; the
	// prediction and odds are stripped before the tip leaves the server.
	Locked bool `json:"locked,omitempty"`

	Match *Match `json:"match,omitempty"`
}
