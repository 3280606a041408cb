package intake

import "errors"

var (
	// ErrEmptyConversation is returned when finalize is attempted
	// before the reporter has said anything.
	ErrEmptyConversation = errors.New("conversation has no reporter messages")

	// ErrSessionFinalized is returned when a turn arrives after the
	// report was already submitted.
	ErrSessionFinalized = errors.New("session already finalized")

	// ErrFinalizeInProgress is returned when a finalize request races
	// an in-flight one for the same session.
	ErrFinalizeInProgress = errors.New("finalize already in progress")
)
