package port

import (
	"context"
	"errors"
	"time"

	"github.com/DevYoma/zora-be/internal/core/domain"
)

// ErrOptimisticLock is returned when a conditional write matched no row,
// meaning another writer got there first (or inventory ran out).
var ErrOptimisticLock = errors.New("optimistic lock conflict")

type DatabaseRepository interface {
	// CreateEvent persists a new event and returns it as stored.
	CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error)

	// GetEvent retrieves an event by ID, nil when absent.
	GetEvent(ctx context.Context, id string) (*domain.Event, error)

	// ListEvents returns all events ordered by date ascending.
	ListEvents(ctx context.Context) ([]domain.Event, error)

	// CreateTickets inserts the ticket rows and decrements the event's
	// available counter in a single transaction. The decrement is
	// conditional on available_tickets >= len(tickets); when it matches
	// no row the whole transaction rolls back with ErrOptimisticLock.
	CreateTickets(ctx context.Context, eventID string, tickets []domain.Ticket) error

	// GetTicket retrieves a ticket by ID, nil when absent.
	GetTicket(ctx context.Context, id string) (*domain.Ticket, error)

	// GetTicketWithEvent retrieves a ticket and its parent event. The
	// event may be nil if the referenced row is gone.
	GetTicketWithEvent(ctx context.Context, id string) (*domain.Ticket, *domain.Event, error)

	// FindTicketsByOwner returns tickets for a lowercase owner address,
	// most recent purchase first.
	FindTicketsByOwner(ctx context.Context, ownerAddress string) ([]domain.Ticket, error)

	// FindTicketsByOwnerWithEvents returns the owner's tickets joined
	// with their parent events, most recent purchase first.
	FindTicketsByOwnerWithEvents(ctx context.Context, ownerAddress string) ([]domain.TicketWithEvent, error)

	// FindTicketsByToken returns tickets matching a token ID exactly.
	FindTicketsByToken(ctx context.Context, tokenID string) ([]domain.Ticket, error)

	// CountTicketsByBuyer counts tickets held by an owner for one event.
	CountTicketsByBuyer(ctx context.Context, eventID, ownerAddress string) (int, error)

	// MarkTicketUsed flips is_used conditionally; reports false when the
	// ticket was already used.
	MarkTicketUsed(ctx context.Context, id string, usedAt time.Time) (bool, error)

	// TotalRevenue sums the ticket price over all sold tickets.
	TotalRevenue(ctx context.Context) (float64, error)
}
