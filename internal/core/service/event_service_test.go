package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevYoma/zora-be/internal/core/domain"
)

func validEvent() domain.Event {
	return domain.Event{
		Name:              "Concert",
		Date:              "2026-12-31",
		Time:              "20:00",
		Location:          "Arena",
		TicketPrice:       0.05,
		TicketQuantity:    100,
		CollectionAddress: "0xcccccccccccccccccccccccccccccccccccccccc",
		CreatorAddress:    "0xdddddddddddddddddddddddddddddddddddddddd",
		TransactionHash:   "0xbeef",
	}
}

func TestCreateEvent_Success(t *testing.T) {
	db := newMockDB()
	cache := newMockCache()
	svc := NewEventService(db, cache, testLogger())

	created, err := svc.CreateEvent(context.Background(), validEvent())
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 100, created.TicketQuantity)
	assert.Equal(t, 100, created.AvailableTickets, "availability starts at full quantity")
	assert.Equal(t, 100, cache.availability[created.ID], "counter seeded at creation")

	stored, err := db.GetEvent(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestCreateEvent_Invalid(t *testing.T) {
	svc := NewEventService(newMockDB(), newMockCache(), testLogger())

	mutations := []func(*domain.Event){
		func(e *domain.Event) { e.Name = "" },
		func(e *domain.Event) { e.Date = "" },
		func(e *domain.Event) { e.Time = "" },
		func(e *domain.Event) { e.Location = "" },
		func(e *domain.Event) { e.CollectionAddress = "" },
		func(e *domain.Event) { e.CreatorAddress = "" },
		func(e *domain.Event) { e.TransactionHash = "" },
		func(e *domain.Event) { e.TicketQuantity = 0 },
		func(e *domain.Event) { e.TicketPrice = -1 },
	}

	for i, mutate := range mutations {
		event := validEvent()
		mutate(&event)
		_, err := svc.CreateEvent(context.Background(), event)
		assert.ErrorIs(t, err, ErrInvalidEvent, "mutation %d", i)
	}
}

func TestGetEvent_NotFound(t *testing.T) {
	svc := NewEventService(newMockDB(), newMockCache(), testLogger())

	_, err := svc.GetEvent(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestTicketsByOwner_Normalizes(t *testing.T) {
	db := newMockDB()
	svc := NewEventService(db, newMockCache(), testLogger())
	db.addEvent(domain.Event{ID: "event-1", Name: "Concert"})
	seedTicket(db, "ticket-1", "event-1", "1", "0xabc123")

	tickets, err := svc.TicketsByOwner(context.Background(), "0xABC123")
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "ticket-1", tickets[0].ID)
	require.NotNil(t, tickets[0].Event, "listing embeds the parent event")
	assert.Equal(t, "Concert", tickets[0].Event.Name)
}

func TestTotalRevenue(t *testing.T) {
	db := newMockDB()
	svc := NewEventService(db, newMockCache(), testLogger())

	db.addEvent(domain.Event{ID: "e1", TicketPrice: 2.5})
	seedTicket(db, "t1", "e1", "1", "0xaa")
	seedTicket(db, "t2", "e1", "2", "0xbb")

	total, err := svc.TotalRevenue(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 5.0, total, 1e-9)
}
