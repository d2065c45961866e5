package domain

import "time"

// Ticket represents ownership of one event seat, mirrored by an on-chain
// token. OwnerAddress is stored lowercase. IsUsed transitions false to true
// exactly once; UsedAt is nil until then.
type Ticket struct {
	ID                      string
	EventID                 string
	TokenID                 string
	OwnerAddress            string
	PurchaseTransactionHash string
	IsUsed                  bool
	UsedAt                  *time.Time
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// TicketWithEvent pairs a ticket with its parent event for listings.
type TicketWithEvent struct {
	Ticket
	Event *Event
}
