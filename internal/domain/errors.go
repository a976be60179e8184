package domain

import (
	"errors"
	"fmt"
)

// ErrVersionNotFound is returned when a referenced contract version does not
// exist. Listing a contract with no versions is not an error; it yields an
// empty sequence.
var ErrVersionNotFound = errors.New("contract version not found")

// ErrRestoreCurrentVersion is returned when a caller attempts to restore the
// version that is already current.
var ErrRestoreCurrentVersion = errors.New("version is already current")

// ValidationError rejects bad input before any write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
