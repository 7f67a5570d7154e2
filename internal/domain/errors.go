package domain

import "errors"

// Sentinel errors shared across services and controllers.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
)

// Registration workflow errors. All of these are detected locally before any
// ledger call is made.
var (
	ErrIdentityRequired  = errors.New("identity required: connect a wallet or provide an email")
	ErrAlreadyRegistered = errors.New("already registered for this event")
	ErrEventFull         = errors.New("event is at capacity")
	ErrNotRegistered     = errors.New("not registered for this event")
	ErrNotAttended       = errors.New("attendance not confirmed for this event")
)

// ErrLedgerRejected wraps a transaction the ledger refused or that failed to
// reach confirmation. Local state is never mutated when this is returned.
var ErrLedgerRejected = errors.New("ledger transaction rejected")

// ErrInvalidTransition is returned for bounty lifecycle moves that are not
// allowed from the current status.
var ErrInvalidTransition = errors.New("invalid bounty status transition")
