package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrMissingInput   = errors.New("missing input query parameter")
	ErrMissingAccount = errors.New("missing account id")
)
