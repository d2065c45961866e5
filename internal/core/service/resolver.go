package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/DevYoma/zora-be/internal/core/domain"
)

// CodeKind classifies a free-form verification code by shape. Precedence:
// canonical UUID beats wallet address beats token ID.
type CodeKind int

const (
	CodeTicketID CodeKind = iota
	CodeWalletAddress
	CodeTokenID
)

func (k CodeKind) String() string {
	switch k {
	case CodeTicketID:
		return "ticket_id"
	case CodeWalletAddress:
		return "wallet_address"
	default:
		return "token_id"
	}
}

// 8-4-4-4-12 hexadecimal grouping.
var ticketIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

func ClassifyCode(code string) CodeKind {
	switch {
	case ticketIDPattern.MatchString(code):
		return CodeTicketID
	case strings.HasPrefix(code, "0x") || strings.HasPrefix(code, "0X"):
		return CodeWalletAddress
	default:
		return CodeTokenID
	}
}

// Resolve maps a verification code to exactly one ticket. A wallet address
// held by a repeat buyer matches several tickets; the tie-break is most
// recent purchase first, ticket ID descending on equal timestamps, so
// repeated calls against identical data pick the same ticket.
func (s *TicketService) Resolve(ctx context.Context, code string) (*domain.Ticket, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrTicketNotFound
	}

	switch ClassifyCode(code) {
	case CodeTicketID:
		ticket, err := s.db.GetTicket(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("%w: lookup ticket: %v", ErrStoreUnavailable, err)
		}
		if ticket == nil {
			return nil, ErrTicketNotFound
		}
		return ticket, nil

	case CodeWalletAddress:
		tickets, err := s.db.FindTicketsByOwner(ctx, strings.ToLower(code))
		if err != nil {
			return nil, fmt.Errorf("%w: lookup by owner: %v", ErrStoreUnavailable, err)
		}
		if len(tickets) == 0 {
			return nil, ErrTicketNotFound
		}
		sort.SliceStable(tickets, func(i, j int) bool {
			if !tickets[i].CreatedAt.Equal(tickets[j].CreatedAt) {
				return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
			}
			return tickets[i].ID > tickets[j].ID
		})
		return &tickets[0], nil

	default:
		tickets, err := s.db.FindTicketsByToken(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("%w: lookup by token: %v", ErrStoreUnavailable, err)
		}
		if len(tickets) == 0 {
			return nil, ErrTicketNotFound
		}
		if len(tickets) > 1 {
			// Token IDs are unique per collection; duplicates mean the
			// store is corrupt and guessing would be worse than failing.
			return nil, ErrAmbiguousCode
		}
		return &tickets[0], nil
	}
}
