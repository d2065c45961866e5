package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/DevYoma/zora-be/internal/core/domain"
	"github.com/DevYoma/zora-be/internal/port"
)

// Mock DatabaseRepository
type mockDB struct {
	mu      sync.Mutex
	events  map[string]*domain.Event
	tickets map[string]*domain.Ticket

	createTicketsErr error
	markUsedErr      error
}

func newMockDB() *mockDB {
	return &mockDB{
		events:  make(map[string]*domain.Event),
		tickets: make(map[string]*domain.Ticket),
	}
}

func (m *mockDB) addEvent(e domain.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := e
	m.events[e.ID] = &copied
}

func (m *mockDB) addTicket(t domain.Ticket) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := t
	m.tickets[t.ID] = &copied
}

func (m *mockDB) CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	m.addEvent(event)
	return event, nil
}

func (m *mockDB) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, nil
	}
	copied := *e
	return &copied, nil
}

func (m *mockDB) ListEvents(ctx context.Context) ([]domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var events []domain.Event
	for _, e := range m.events {
		events = append(events, *e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Date < events[j].Date })
	return events, nil
}

func (m *mockDB) CreateTickets(ctx context.Context, eventID string, tickets []domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createTicketsErr != nil {
		return m.createTicketsErr
	}

	e, ok := m.events[eventID]
	if !ok || e.AvailableTickets < len(tickets) {
		return port.ErrOptimisticLock
	}

	for _, t := range tickets {
		copied := t
		m.tickets[t.ID] = &copied
	}
	e.AvailableTickets -= len(tickets)
	return nil
}

func (m *mockDB) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (m *mockDB) GetTicketWithEvent(ctx context.Context, id string) (*domain.Ticket, *domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, nil, nil
	}
	ticket := *t
	if e, ok := m.events[t.EventID]; ok {
		event := *e
		return &ticket, &event, nil
	}
	return &ticket, nil, nil
}

func (m *mockDB) FindTicketsByOwner(ctx context.Context, ownerAddress string) ([]domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var tickets []domain.Ticket
	for _, t := range m.tickets {
		if t.OwnerAddress == ownerAddress {
			tickets = append(tickets, *t)
		}
	}
	return tickets, nil
}

func (m *mockDB) FindTicketsByOwnerWithEvents(ctx context.Context, ownerAddress string) ([]domain.TicketWithEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var results []domain.TicketWithEvent
	for _, t := range m.tickets {
		if t.OwnerAddress != ownerAddress {
			continue
		}
		pair := domain.TicketWithEvent{Ticket: *t}
		if e, ok := m.events[t.EventID]; ok {
			event := *e
			pair.Event = &event
		}
		results = append(results, pair)
	}
	sort.Slice(results, func(i, j int) bool {
		if !results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].CreatedAt.After(results[j].CreatedAt)
		}
		return results[i].ID > results[j].ID
	})
	return results, nil
}

func (m *mockDB) FindTicketsByToken(ctx context.Context, tokenID string) ([]domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var tickets []domain.Ticket
	for _, t := range m.tickets {
		if t.TokenID == tokenID {
			tickets = append(tickets, *t)
		}
	}
	return tickets, nil
}

func (m *mockDB) CountTicketsByBuyer(ctx context.Context, eventID, ownerAddress string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, t := range m.tickets {
		if t.EventID == eventID && t.OwnerAddress == ownerAddress {
			count++
		}
	}
	return count, nil
}

func (m *mockDB) MarkTicketUsed(ctx context.Context, id string, usedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.markUsedErr != nil {
		return false, m.markUsedErr
	}

	t, ok := m.tickets[id]
	if !ok || t.IsUsed {
		return false, nil
	}
	t.IsUsed = true
	ts := usedAt
	t.UsedAt = &ts
	return true, nil
}

func (m *mockDB) TotalRevenue(ctx context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total float64
	for _, t := range m.tickets {
		if e, ok := m.events[t.EventID]; ok {
			total += e.TicketPrice
		}
	}
	return total, nil
}

// Mock CacheRepository
type mockCache struct {
	mu           sync.Mutex
	availability map[string]int
	idempotency  map[string]bool
}

func newMockCache() *mockCache {
	return &mockCache{
		availability: make(map[string]int),
		idempotency:  make(map[string]bool),
	}
}

func (m *mockCache) ReserveTickets(ctx context.Context, eventID string, quantity int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.availability[eventID]
	if !ok || current < quantity {
		return false, nil
	}
	m.availability[eventID] = current - quantity
	return true, nil
}

func (m *mockCache) ReleaseTickets(ctx context.Context, eventID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.availability[eventID] += quantity
	return nil
}

func (m *mockCache) SeedAvailability(ctx context.Context, eventID string, available int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.availability[eventID]; !ok {
		m.availability[eventID] = available
	}
	return nil
}

func (m *mockCache) InitAvailability(ctx context.Context, eventID string, available int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.availability[eventID] = available
	return nil
}

func (m *mockCache) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.idempotency[key] {
		return false, nil
	}
	m.idempotency[key] = true
	return true, nil
}

func (m *mockCache) ClearIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.idempotency, key)
	return nil
}

// Fake ChainVerifier
type fakeVerifier struct {
	result port.OwnershipResult
	err    error
	calls  int
}

func (f *fakeVerifier) VerifyOwnership(ctx context.Context, collectionAddress, tokenID, claimedOwner string) (port.OwnershipResult, error) {
	f.calls++
	return f.result, f.err
}
