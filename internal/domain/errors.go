package domain

import "errors"

var (
	// ErrTaskNotFound is returned when no task has the requested id.
	ErrTaskNotFound = errors.New("task not found")

	// ErrStatusConflict means the task left the expected status between
	// claim and advance. Callers treat it as "nothing to do".
	ErrStatusConflict = errors.New("task status changed since claim")

	// ErrIllegalTransition is a programming error: the requested move is not
	// in the transition table.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrInvalidUpdate means the fields required by the target status are missing.
	ErrInvalidUpdate = errors.New("invalid task update")

	// ErrInvalidScript marks generated or supplied scenes that fail validation.
	ErrInvalidScript = errors.New("invalid script")

	// ErrUnknownStatus is returned for a status outside the fixed order.
	ErrUnknownStatus = errors.New("unknown status")

	// ErrMissingMedia means a file a stage depends on is not on disk.
	ErrMissingMedia = errors.New("required media file missing")

	// ErrInvalidAdmission means a story arrived without a title or content.
	ErrInvalidAdmission = errors.New("invalid admission request")

	// ErrUnknownSlot is returned when a run names a slot missing from config.
	ErrUnknownSlot = errors.New("unknown slot")
)
