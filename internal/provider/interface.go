package provider

import (
	"context"

	"github.com/talkport/mailfeed/internal/models"
)

// Credentials are the opaque tokens obtained from a code exchange. They are
// scoped to a single linking operation and never persisted.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// Identity is the authenticated account bound to a set of credentials.
type Identity struct {
	Email    string
	Name     string
	GoogleID string
}

// OAuth defines the identity-provider side of the boundary: trading a
// one-time authorization code for credentials and resolving who they belong to.
type OAuth interface {
	// Exchange trades the authorization code for credentials and resolves
	// the account identity. Fails with ErrInvalidCode, ErrExchangeFailed or
	// ErrIdentityResolution.
	Exchange(ctx context.Context, code string) (Credentials, Identity, error)
}

// Mail defines the mail-provider side of the boundary.
type Mail interface {
	// ListMessageIDs returns up to max message ids for the account the
	// credentials belong to, newest first, in the provider's own order.
	ListMessageIDs(ctx context.Context, creds Credentials, max int64) ([]string, error)

	// GetMessage retrieves the full raw representation of one message.
	GetMessage(ctx context.Context, creds Credentials, id string) (*models.RawMessage, error)
}
