// Package store defines the persistent user-record collaborator. The
// in-memory registry remains authoritative for the running process; the
// store only records which accounts were linked and by whom.
package store

import (
	"context"

	"github.com/talkport/mailfeed/internal/models"
)

// UserStore persists one record per linked account, keyed by email.
type UserStore interface {
	// SaveUser inserts the record, or refreshes name/google_id/linked_at
	// when the email was linked before.
	SaveUser(ctx context.Context, user models.UserRecord) error

	// ListUsers returns all linked-account records, most recently linked first.
	ListUsers(ctx context.Context) ([]models.UserRecord, error)

	// DeleteUser removes the record for the email if present.
	DeleteUser(ctx context.Context, email string) error
}
