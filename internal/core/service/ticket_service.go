package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/DevYoma/zora-be/internal/core/domain"
	"github.com/DevYoma/zora-be/internal/port"
)

// TicketService owns the two invariants with real correctness hazards:
// sold tickets never exceed an event's quantity, and a ticket is redeemed
// at most once. Exclusivity is enforced at the stores (Redis check-and-set,
// MySQL conditional updates), never with in-process locks, so multiple
// instances can run against the same data.
type TicketService struct {
	db       port.DatabaseRepository
	cache    port.CacheRepository
	verifier port.ChainVerifier
	logger   *logrus.Logger

	// enforceOnePerBuyer rejects a second purchase for the same
	// (event, buyer) pair when set.
	enforceOnePerBuyer bool

	now func() time.Time
}

func NewTicketService(db port.DatabaseRepository, cache port.CacheRepository, verifier port.ChainVerifier, logger *logrus.Logger, enforceOnePerBuyer bool) *TicketService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &TicketService{
		db:                 db,
		cache:              cache,
		verifier:           verifier,
		logger:             logger,
		enforceOnePerBuyer: enforceOnePerBuyer,
		now:                time.Now,
	}
}

type PurchaseRequest struct {
	EventID      string
	BuyerAddress string
	Quantity     int
	TokenIDs     []string
	TxHash       string
	// RequestID is the caller's idempotency key. Falls back to TxHash
	// when empty.
	RequestID string
}

// Purchase issues tickets against the event's shrinking counter. The Redis
// reservation is the fast front gate; the MySQL conditional decrement inside
// CreateTickets is authoritative. Any failure after the reservation releases
// it again, so a failed purchase leaves no residue and a retry with the same
// request ID is safe.
func (s *TicketService) Purchase(ctx context.Context, req PurchaseRequest) ([]domain.Ticket, error) {
	quantity := req.Quantity
	if len(req.TokenIDs) > 0 {
		// A quantity that disagrees with an explicit token list is a
		// caller bug, not something to paper over.
		if quantity > 0 && quantity != len(req.TokenIDs) {
			return nil, ErrInvalidPurchase
		}
		quantity = len(req.TokenIDs)
	}
	if req.EventID == "" || req.BuyerAddress == "" || quantity < 1 {
		return nil, ErrInvalidPurchase
	}
	buyer := strings.ToLower(req.BuyerAddress)

	requestID := req.RequestID
	if requestID == "" {
		requestID = req.TxHash
	}
	if requestID == "" {
		return nil, ErrInvalidPurchase
	}

	idemKey := "purchase:" + requestID
	ok, err := s.cache.SetIdempotency(ctx, idemKey)
	if err != nil {
		return nil, fmt.Errorf("%w: idempotency check: %v", ErrStoreUnavailable, err)
	}
	if !ok {
		return nil, ErrDuplicateRequest
	}

	event, err := s.db.GetEvent(ctx, req.EventID)
	if err != nil {
		s.clearKeys(ctx, idemKey)
		return nil, fmt.Errorf("%w: load event: %v", ErrStoreUnavailable, err)
	}
	if event == nil {
		s.clearKeys(ctx, idemKey)
		return nil, ErrEventNotFound
	}

	var buyerKey string
	if s.enforceOnePerBuyer {
		count, err := s.db.CountTicketsByBuyer(ctx, event.ID, buyer)
		if err != nil {
			s.clearKeys(ctx, idemKey)
			return nil, fmt.Errorf("%w: buyer check: %v", ErrStoreUnavailable, err)
		}
		if count > 0 {
			s.clearKeys(ctx, idemKey)
			return nil, ErrDuplicatePurchase
		}

		// Two concurrent first purchases by the same buyer both pass the
		// count above; the key claim below lets only one proceed.
		buyerKey = "buyer:" + event.ID + ":" + buyer
		ok, err := s.cache.SetIdempotency(ctx, buyerKey)
		if err != nil {
			s.clearKeys(ctx, idemKey)
			return nil, fmt.Errorf("%w: buyer guard: %v", ErrStoreUnavailable, err)
		}
		if !ok {
			s.clearKeys(ctx, idemKey)
			return nil, ErrDuplicatePurchase
		}
	}

	if err := s.cache.SeedAvailability(ctx, event.ID, event.AvailableTickets); err != nil {
		s.clearKeys(ctx, idemKey, buyerKey)
		return nil, fmt.Errorf("%w: seed availability: %v", ErrStoreUnavailable, err)
	}

	ok, err = s.cache.ReserveTickets(ctx, event.ID, quantity)
	if err != nil {
		s.clearKeys(ctx, idemKey, buyerKey)
		return nil, fmt.Errorf("%w: reserve tickets: %v", ErrStoreUnavailable, err)
	}
	if !ok {
		s.clearKeys(ctx, idemKey, buyerKey)
		return nil, ErrInsufficientInventory
	}

	now := s.now()
	tickets := make([]domain.Ticket, 0, quantity)
	for i := 0; i < quantity; i++ {
		tokenID := uuid.NewString()
		if i < len(req.TokenIDs) {
			tokenID = req.TokenIDs[i]
		}
		tickets = append(tickets, domain.Ticket{
			ID:                      uuid.NewString(),
			EventID:                 event.ID,
			TokenID:                 tokenID,
			OwnerAddress:            buyer,
			PurchaseTransactionHash: req.TxHash,
			CreatedAt:               now,
			UpdatedAt:               now,
		})
	}

	if err := s.db.CreateTickets(ctx, event.ID, tickets); err != nil {
		if relErr := s.cache.ReleaseTickets(ctx, event.ID, quantity); relErr != nil {
			s.logger.WithError(relErr).WithFields(logrus.Fields{
				"event_id": event.ID,
				"quantity": quantity,
			}).Error("rollback of reserved tickets failed; counters need reconciliation")
		}
		s.clearKeys(ctx, idemKey, buyerKey)

		if errors.Is(err, port.ErrOptimisticLock) {
			return nil, ErrInsufficientInventory
		}
		s.logger.WithError(err).WithField("event_id", event.ID).
			Warn("ticket write failed after reservation, reservation released")
		return nil, fmt.Errorf("%w: write tickets: %v", ErrStoreUnavailable, err)
	}

	return tickets, nil
}

func (s *TicketService) clearKeys(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.cache.ClearIdempotency(ctx, key); err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("failed to clear idempotency key")
		}
	}
}
