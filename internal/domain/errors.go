package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrAlreadyPlaced        = errors.New("member already placed in matrix")
	ErrSlotLocked           = errors.New("matrix slot locked for cooling-off")
	ErrConflict             = errors.New("concurrent write conflict, retry budget exhausted")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrBelowMinimumPayout   = errors.New("below minimum payout")
	ErrPendingRequestExists = errors.New("pending payout request already exists")
	ErrInvalidConfiguration = errors.New("invalid compensation configuration")
	ErrDuplicateEvent       = errors.New("duplicate qualifying event")
	ErrInvalidTransition    = errors.New("invalid status transition")
)

// BelowMinimumPayoutError carries the amounts needed to render an exact
// user-facing message.
type BelowMinimumPayoutError struct {
	Requested float64
	Minimum   float64
}

func (e *BelowMinimumPayoutError) Error() string {
	return fmt.Sprintf("$%.2f below minimum payout of $%.2f", e.Requested, e.Minimum)
}

func (e *BelowMinimumPayoutError) Unwrap() error {
	return ErrBelowMinimumPayout
}

type InsufficientBalanceError struct {
	Requested float64
	Available float64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("requested $%.2f exceeds available balance of $%.2f", e.Requested, e.Available)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}
