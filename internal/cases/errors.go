package cases

import "errors"

var (
	// ErrCaseNotFound is returned when a case id has no row.
	ErrCaseNotFound = errors.New("case not found")

	// ErrUnknownStatus is returned for status values outside the enum.
	ErrUnknownStatus = errors.New("unknown case status")

	// ErrInvalidIntervention is returned when required intervention
	// fields are missing.
	ErrInvalidIntervention = errors.New("action and responsible are required")
)
