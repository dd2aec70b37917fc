package errors

import (
	"github.com/cockroachdb/errors"
)

// Marker errors used to classify failures across the repository. Callers
// match on these with errors.Is via the helpers below.
var (
	ErrValidation    = errors.New("validation_error")
	ErrNotFound      = errors.New("not_found")
	ErrAlreadyExists = errors.New("already_exists")
	ErrDatabase      = errors.New("database_error")
	ErrInternal      = errors.New("internal_error")
)

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func IsDatabase(err error) bool {
	return errors.Is(err, ErrDatabase)
}

func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}
