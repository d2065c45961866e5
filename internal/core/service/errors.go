package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEventNotFound         = errors.New("event not found")
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrInsufficientInventory = errors.New("not enough tickets available")
	ErrDuplicateRequest      = errors.New("duplicate request")
	ErrDuplicatePurchase     = errors.New("ticket already purchased for this event")
	ErrAmbiguousCode         = errors.New("verification code matches multiple tickets")
	ErrInvalidPurchase       = errors.New("invalid purchase request")
	ErrInvalidEvent          = errors.New("invalid event")
	ErrStoreUnavailable      = errors.New("record store unavailable")
	ErrVerifierUnavailable   = errors.New("ownership verifier unavailable")
)

// AlreadyUsedError reports a redemption attempt on a spent ticket, carrying
// the timestamp of the one redemption that did succeed.
type AlreadyUsedError struct {
	UsedAt time.Time
}

func (e *AlreadyUsedError) Error() string {
	return fmt.Sprintf("ticket already used at %s", e.UsedAt.Format(time.RFC3339))
}

// OwnershipMismatchError reports a negative on-chain verification: the token
// is held by ActualOwner, not by the ticket's recorded owner.
type OwnershipMismatchError struct {
	ActualOwner string
}

func (e *OwnershipMismatchError) Error() string {
	return fmt.Sprintf("ownership verification failed: token held by %s", e.ActualOwner)
}
