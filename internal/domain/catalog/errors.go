package catalog

import (
	"errors"
	"fmt"

	"github.com/okian/gamegraph/internal/domain/model"
)

// Sentinel failure kinds for catalog calls.
var (
	ErrNotFound     = errors.New("catalog: not found")
	ErrForbidden    = errors.New("catalog: forbidden")
	ErrUnauthorized = errors.New("catalog: unauthorized")
	ErrUpstream     = errors.New("catalog: upstream error")
)

// PrivateProfileError reports an account whose library cannot be read.
// It matches ErrForbidden under errors.Is.
type PrivateProfileError struct {
	AccountID model.AccountID
}

func (e *PrivateProfileError) Error() string {
	return fmt.Sprintf("profile %s is private", e.AccountID)
}

// Unwrap lets errors.Is(err, ErrForbidden) see through the private profile.
func (e *PrivateProfileError) Unwrap() error { return ErrForbidden }

// NewPrivateProfile builds a PrivateProfileError for id.
func NewPrivateProfile(id model.AccountID) error {
	return &PrivateProfileError{AccountID: id}
}

// IsPrivateProfile reports whether err came from an inaccessible library.
func IsPrivateProfile(err error) bool {
	var pp *PrivateProfileError
	return errors.As(err, &pp)
}

// Reason names the failure kind of err, for logs and metric labels.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	default:
		return "error"
	}
}
