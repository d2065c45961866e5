package service

import (
	"context"
	"fmt"

	"github.com/DevYoma/zora-be/internal/core/domain"
)

type RedemptionResult struct {
	Ticket domain.Ticket
	Event  *domain.Event
}

// Redeem marks a ticket used exactly once. The check-then-write race is
// settled by the store's conditional update: when two redemptions both see
// is_used = false, only one update matches a row, and the loser is told the
// winner's timestamp.
func (s *TicketService) Redeem(ctx context.Context, ticketID string, requireProof bool) (*RedemptionResult, error) {
	ticket, event, err := s.db.GetTicketWithEvent(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("%w: load ticket: %v", ErrStoreUnavailable, err)
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}
	if ticket.IsUsed {
		used := &AlreadyUsedError{}
		if ticket.UsedAt != nil {
			used.UsedAt = *ticket.UsedAt
		}
		return nil, used
	}

	if requireProof {
		if event == nil {
			return nil, ErrEventNotFound
		}
		result, err := s.verifier.VerifyOwnership(ctx, event.CollectionAddress, ticket.TokenID, ticket.OwnerAddress)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrVerifierUnavailable, err)
		}
		if !result.IsValid {
			return nil, &OwnershipMismatchError{ActualOwner: result.ActualOwner}
		}
	}

	usedAt := s.now()
	ok, err := s.db.MarkTicketUsed(ctx, ticket.ID, usedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: mark used: %v", ErrStoreUnavailable, err)
	}
	if !ok {
		// Lost the race; report when the winner redeemed.
		current, _, err := s.db.GetTicketWithEvent(ctx, ticket.ID)
		if err == nil && current != nil && current.UsedAt != nil {
			return nil, &AlreadyUsedError{UsedAt: *current.UsedAt}
		}
		return nil, &AlreadyUsedError{}
	}

	ticket.IsUsed = true
	ticket.UsedAt = &usedAt
	ticket.UpdatedAt = usedAt
	return &RedemptionResult{Ticket: *ticket, Event: event}, nil
}

// RedeemByCode resolves a free-form verification code to a single ticket and
// redeems it.
func (s *TicketService) RedeemByCode(ctx context.Context, code string, requireProof bool) (*RedemptionResult, error) {
	ticket, err := s.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.Redeem(ctx, ticket.ID, requireProof)
}
