package domain

import "time"

// Event is a ticketed event backed by an ERC-721 collection. TicketQuantity
// is fixed at creation; AvailableTickets only ever decreases and stays within
// [0, TicketQuantity].
type Event struct {
	ID                string
	Name              string
	Description       string
	Date              string
	Time              string
	Location          string
	TicketPrice       float64
	TicketQuantity    int
	AvailableTickets  int
	ImageURL          string
	CollectionAddress string
	CreatorAddress    string
	TransactionHash   string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
