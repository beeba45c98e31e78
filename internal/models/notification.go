package models

import "time"

// Notification types used for client-side grouping.
const (
	NotificationTypeEnrollment = "enrollment"
	NotificationTypeDocument   = "document"
	NotificationTypeGrade      = "grade"
	NotificationTypeLMS        = "lms"
	NotificationTypeAccount    = "account"
)

// Notification is written as a side effect of state transitions. It is owned
// by the target user and only is_read is ever mutated afterwards.
type Notification struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	LinkURL   *string   `db:"link_url" json:"link_url,omitempty"`
	Type      string    `db:"type" json:"type"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NotificationFilter captures list filtering criteria.
type NotificationFilter struct {
	UserID     string
	UnreadOnly bool
	Page       int
	PageSize   int
}
