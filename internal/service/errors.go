package service

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every service error wraps exactly one of these, so
// callers branch with errors.Is.
var (
	ErrValidation   = errors.New("invalid input")
	ErrInvalidState = errors.New("operation not allowed in current state")
	ErrUnauthorized = errors.New("insufficient rights over the target entity")
	ErrConflict     = errors.New("lost a concurrent update race")
	ErrNotFound     = errors.New("not found")
)

var (
	ErrUserNotFound     = fmt.Errorf("%w: user", ErrNotFound)
	ErrBusinessNotFound = fmt.Errorf("%w: business profile", ErrNotFound)
	ErrJobNotFound      = fmt.Errorf("%w: job", ErrNotFound)
	ErrBidNotFound      = fmt.Errorf("%w: bid", ErrNotFound)
	ErrMessageNotFound  = fmt.Errorf("%w: message", ErrNotFound)

	ErrMissingFields     = fmt.Errorf("%w: required fields are empty", ErrValidation)
	ErrBudgetNotPositive = fmt.Errorf("%w: budget must be positive", ErrValidation)
	ErrAmountNotPositive = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrInvalidRole       = fmt.Errorf("%w: role must be requester or provider", ErrValidation)
	ErrInvalidDecision   = fmt.Errorf("%w: decision must be accept or reject", ErrValidation)
	ErrSelfMessage       = fmt.Errorf("%w: sender and receiver are the same user", ErrValidation)

	ErrJobNotOpen        = fmt.Errorf("%w: job is not open for bidding", ErrInvalidState)
	ErrJobNotInProgress  = fmt.Errorf("%w: job is not in progress", ErrInvalidState)
	ErrBidAlreadyDecided = fmt.Errorf("%w: bid is already decided", ErrInvalidState)
	ErrBidOnOwnJob       = fmt.Errorf("%w: cannot bid on your own job", ErrInvalidState)

	ErrNotJobOwner        = fmt.Errorf("%w: only the job owner may do this", ErrUnauthorized)
	ErrNotBusinessOwner   = fmt.Errorf("%w: business profile belongs to another user", ErrUnauthorized)
	ErrNotMessageReceiver = fmt.Errorf("%w: only the receiver may mark a message read", ErrUnauthorized)
	ErrNotProvider        = fmt.Errorf("%w: business profiles belong to provider accounts", ErrUnauthorized)

	ErrEmailTaken = fmt.Errorf("%w: email already registered", ErrConflict)
)
