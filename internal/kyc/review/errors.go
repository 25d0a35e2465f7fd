package review

import "errors"

var (
	// ErrActionDisabled is returned when approve or reject is triggered on a
	// record that cannot be acted on, or while a decision is in flight.
	ErrActionDisabled = errors.New("action disabled for this status")
	// ErrSubmitting is returned when the dialog is changed during submission.
	ErrSubmitting = errors.New("decision is being submitted")
	// ErrNoDialog is returned when confirming without the matching dialog open.
	ErrNoDialog = errors.New("no confirmation dialog open")
	// ErrUnknownReason is returned for a rejection reason code outside the fixed set.
	ErrUnknownReason = errors.New("unknown rejection reason")
	// ErrNoImage is returned when previewing an image the record does not have.
	ErrNoImage = errors.New("image not available")
	// ErrNoRecord is returned when copying before the record has loaded.
	ErrNoRecord = errors.New("record not loaded")
	// ErrUnknownField is returned when copying a field that is not an identifier.
	ErrUnknownField = errors.New("unknown field")
	// ErrEmptyField is returned when copying an identifier the record lacks.
	ErrEmptyField = errors.New("field is empty")
)
