package auction

import (
	"errors"
	"fmt"
)

// Errors returned by engine commands. A failed command never changes state.
var (
	ErrNoEligiblePlayers    = errors.New("no eligible players in this pool")
	ErrNoActivePlayer       = errors.New("no player on the block")
	ErrUnknownEntity        = errors.New("unknown entity")
	ErrInvalidPreconditions = errors.New("invalid preconditions")
	ErrClosed               = errors.New("engine is closed")
	ErrSessionExists        = errors.New("session already has a journal")
)

// Refinements of ErrInvalidPreconditions.
var (
	ErrWrongPhase        = fmt.Errorf("%w: not allowed in this phase", ErrInvalidPreconditions)
	ErrLotSettled        = fmt.Errorf("%w: lot already settled", ErrInvalidPreconditions)
	ErrInsufficientPurse = fmt.Errorf("%w: amount exceeds remaining purse", ErrInvalidPreconditions)
	ErrInvalidAmount     = fmt.Errorf("%w: amount must not be negative", ErrInvalidPreconditions)
)
