package models

import "time"

const (
	TicketStatusOpen     = "open"
	TicketStatusAnswered = "answered"
	TicketStatusClosed   = "closed"
)

type Ticket struct {
	ID            int           `json:"id"`
	UserID        int           `json:"user_id"`
	Subject       string        `json:"subject"`
	Message       string        `json:"message"`
	Status        string        `json:"status"`
	AttachmentURL string        `json:"attachment_url,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     *time.Time    `json:"updated_at,omitempty"`
	Replies       []TicketReply `json:"replies,omitempty"`
}

type TicketReply struct {
	ID        int       `json:"id"`
	TicketID  int       `json:"ticket_id"`
	UserID    int       `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
