package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/DevYoma/zora-be/internal/core/domain"
	"github.com/DevYoma/zora-be/internal/port"
)

// EventService is the catalog side of the system: plain persistence with no
// concurrency hazards beyond seeding the availability counter.
type EventService struct {
	db     port.DatabaseRepository
	cache  port.CacheRepository
	logger *logrus.Logger
	now    func() time.Time
}

func NewEventService(db port.DatabaseRepository, cache port.CacheRepository, logger *logrus.Logger) *EventService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &EventService{db: db, cache: cache, logger: logger, now: time.Now}
}

func (s *EventService) CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	switch {
	case event.Name == "",
		event.Date == "",
		event.Time == "",
		event.Location == "",
		event.CollectionAddress == "",
		event.CreatorAddress == "",
		event.TransactionHash == "":
		return domain.Event{}, ErrInvalidEvent
	case event.TicketQuantity < 1 || event.TicketPrice < 0:
		return domain.Event{}, ErrInvalidEvent
	}

	now := s.now()
	event.ID = uuid.NewString()
	event.AvailableTickets = event.TicketQuantity
	event.CreatedAt = now
	event.UpdatedAt = now

	created, err := s.db.CreateEvent(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("%w: create event: %v", ErrStoreUnavailable, err)
	}

	// Missing seed is not fatal; Purchase seeds lazily from the row.
	if err := s.cache.InitAvailability(ctx, created.ID, created.TicketQuantity); err != nil {
		s.logger.WithError(err).WithField("event_id", created.ID).
			Warn("failed to seed availability counter")
	}

	return created, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.db.GetEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: load event: %v", ErrStoreUnavailable, err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

func (s *EventService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	events, err := s.db.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list events: %v", ErrStoreUnavailable, err)
	}
	return events, nil
}

// TicketsByOwner lists an owner's tickets with their events embedded, most
// recent purchase first.
func (s *EventService) TicketsByOwner(ctx context.Context, address string) ([]domain.TicketWithEvent, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrTicketNotFound
	}
	tickets, err := s.db.FindTicketsByOwnerWithEvents(ctx, strings.ToLower(address))
	if err != nil {
		return nil, fmt.Errorf("%w: tickets by owner: %v", ErrStoreUnavailable, err)
	}
	return tickets, nil
}

func (s *EventService) TotalRevenue(ctx context.Context) (float64, error) {
	total, err := s.db.TotalRevenue(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: total revenue: %v", ErrStoreUnavailable, err)
	}
	return total, nil
}
