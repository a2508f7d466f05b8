package entity

import "time"

// Notification is a stored notification row for a user. Delivery to an
// external channel is tracked by SentAt; rendering is a collaborator
// concern.
type Notification struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	IsRead    bool       `json:"is_read"`
	ExpenseID string     `json:"expense_id,omitempty"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
