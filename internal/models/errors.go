package models

import (
	"errors"
	"fmt"
)

// Failure categories. Every error produced by the core wraps exactly one of
// these so callers can branch with errors.Is.
var (
	ErrNetworkFailure    = errors.New("network failure")
	ErrParseFailure      = errors.New("parse failure")
	ErrValidationFailure = errors.New("validation failure")
	ErrStateFailure      = errors.New("state failure")
)

// Validation failures
var (
	ErrDuplicateName     = fmt.Errorf("%w: duplicate location name", ErrValidationFailure)
	ErrNotFound          = fmt.Errorf("%w: not found", ErrValidationFailure)
	ErrInvalidCoordinate = fmt.Errorf("%w: invalid coordinate", ErrValidationFailure)
	ErrInvalidDateRange  = fmt.Errorf("%w: end date before start date", ErrValidationFailure)
	ErrInvalidScore      = fmt.Errorf("%w: success score must be between 1 and 10", ErrValidationFailure)
)

// State failures
var (
	ErrNoActiveOuting = fmt.Errorf("%w: no active outing", ErrStateFailure)
)
