package core

import "errors"

// Error kinds. Callers wrap them with fmt.Errorf("%w: detail", Err...) and
// test them with errors.Is.
var (
	ErrMissingField       = errors.New("missing required field")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidPeriod      = errors.New("invalid period")
	ErrInvalidReference   = errors.New("invalid reference")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrDuplicateIdentity  = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotFound           = errors.New("not found")
	ErrDatabase           = errors.New("database error")
	ErrExternalService    = errors.New("external service error")
)

// IsValidation reports whether err is one of the request validation kinds.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidReference) ||
		errors.Is(err, ErrInvalidPassword) ||
		errors.Is(err, ErrDuplicateIdentity)
}
