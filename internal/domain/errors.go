package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict means the order status changed under the caller's feet,
	// typically an admin double-tap.
	ErrConflict = errors.New("status already changed")
	// ErrTimeout marks a backing-store deadline; the operation may be retried.
	ErrTimeout = errors.New("store timeout")
)

// ValidationError names the checkout field that failed the non-empty check.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string { return "invalid " + e.Field }

func NewValidationError(field string) error { return &ValidationError{Field: field} }

// IsValidation unwraps err into the failing field name.
func IsValidation(err error) (string, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Field, true
	}
	return "", false
}
