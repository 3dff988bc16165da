package provider

import "errors"

// Error taxonomy for a linking attempt. All four are terminal: the caller
// must restart the consent flow, nothing is retried internally.
var (
	// ErrInvalidCode: the authorization code is missing or empty. Detected
	// before any network round-trip.
	ErrInvalidCode = errors.New("authorization code is missing or empty")

	// ErrExchangeFailed: the remote identity provider rejected the code
	// exchange (expired, already consumed, bad client credentials).
	ErrExchangeFailed = errors.New("authorization code exchange failed")

	// ErrIdentityResolution: credentials were obtained but the identity
	// lookup bound to them failed.
	ErrIdentityResolution = errors.New("identity resolution failed")

	// ErrMessageFetch: listing message ids or retrieving any individual
	// message failed. There is no partial-success mode.
	ErrMessageFetch = errors.New("message fetch failed")
)
