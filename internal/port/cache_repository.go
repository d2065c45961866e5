package port

import "context"

type CacheRepository interface {
	// ReserveTickets atomically decreases availability in cache, returns
	// false if insufficient.
	ReserveTickets(ctx context.Context, eventID string, quantity int) (bool, error)

	// ReleaseTickets restores availability (for rollback on failure).
	ReleaseTickets(ctx context.Context, eventID string, quantity int) error

	// SeedAvailability initializes the counter only if it is not set yet.
	SeedAvailability(ctx context.Context, eventID string, available int) error

	// InitAvailability overwrites the counter (event creation).
	InitAvailability(ctx context.Context, eventID string, available int) error

	// SetIdempotency sets a key for idempotency check, returns false if
	// already exists.
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ClearIdempotency removes a key so the caller may retry.
	ClearIdempotency(ctx context.Context, key string) error
}
