package service

import "errors"

var (
	// ErrNotStarted is returned when an operation runs before Start.
	ErrNotStarted = errors.New("service not started")
	// ErrNoCatalog is returned by Start when no catalog client was given.
	ErrNoCatalog = errors.New("service has no catalog client")
)
