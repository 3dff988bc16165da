package models

import (
	"time"

	"github.com/google/uuid"
)

// ConnectedAccount is one linked mail account and its most recently fetched
// message window. Messages are in fetch order (newest first, as returned by
// the provider).
type ConnectedAccount struct {
	Email    string              `json:"email"`
	Messages []NormalizedMessage `json:"messages"`
}

// UserRecord is the persistent record of a linked account. Tokens are
// deliberately not part of it; credentials live only for the duration of a
// linking operation.
type UserRecord struct {
	ID       uuid.UUID `db:"id" json:"id"`
	GoogleID string    `db:"google_id" json:"google_id"`
	Name     string    `db:"name" json:"name"`
	Email    string    `db:"email" json:"email"`
	LinkedAt time.Time `db:"linked_at" json:"linked_at"`
}
