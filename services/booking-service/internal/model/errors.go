package model

import "errors"

// The engine's error taxonomy. Only ErrScheduleConflict is retryable: the
// client should re-query availability and pick again. A missing professional
// for a service is NOT an error; it surfaces as unavailable slots with a
// reason.
var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrScheduleConflict = errors.New("schedule conflict")
)
