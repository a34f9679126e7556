package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Version store errors
	ErrUnknownArtifactType = errors.New("unknown artifact type")
	ErrVersionNotFound     = errors.New("version not found")

	// Checkout errors
	ErrAlreadyLocked = errors.New("artifact is already checked out")
	ErrNotLockHolder = errors.New("actor does not hold the checkout lock")
	ErrNoCheckout    = errors.New("no checked out version exists")

	// Conflict resolution errors
	ErrConflictNotFound           = errors.New("conflict not found")
	ErrConflictAlreadyResolved    = errors.New("conflict is already resolved")
	ErrManualInterventionRequired = errors.New("conflict requires manual intervention")
	ErrIncompleteResolution       = errors.New("manual merge is missing resolutions for conflicting fields")
	ErrInvalidStrategy            = errors.New("unknown resolution strategy")
	ErrUnresolvedConflicts        = errors.New("initiative has unresolved conflicts")

	// Initiative errors
	ErrInitiativeNotFound = errors.New("initiative not found")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
)
