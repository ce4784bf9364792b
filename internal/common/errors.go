package common

import "errors"

var (

	// common errors
	ErrNotFound = errors.New("not found")

	// session-specific errors
	ErrStateCorrupt = errors.New("persisted state corrupt")

	// verification-specific errors
	ErrVerificationMismatch = errors.New("verification code mismatch")
	ErrCodeExpired          = errors.New("verification code expired")
	ErrNoOutstandingCode    = errors.New("no outstanding verification code")

	// lifecycle-specific errors
	ErrNotAuthorized = errors.New("not the ad owner")
	ErrBusy          = errors.New("operation already in flight")
	ErrNotLoggedIn   = errors.New("not logged in")

	// gate-specific errors
	ErrNothingPending = errors.New("nothing pending")
)
