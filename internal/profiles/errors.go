package profiles

import "errors"

var (
	// ErrProfileNotFound is returned when no profile matches the code.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrUnknownRole is returned for role values outside the enum.
	ErrUnknownRole = errors.New("unknown role")

	// ErrCodeTaken is returned when an access code collides. Callers
	// regenerate and retry.
	ErrCodeTaken = errors.New("access code already in use")
)
