package steam

import "errors"

// Sentinel error kinds for this package. Both are reported wrapped in
// catalog.ErrUpstream so callers treat them as service failures rather than
// as a visibility state of the account.
var (
	ErrMissingKey  = errors.New("steam api key is not configured")
	ErrKeyRejected = errors.New("steam api key rejected")
)
