package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/DevYoma/zora-be/internal/core/domain"
	"github.com/DevYoma/zora-be/internal/port"
)

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

const eventColumns = `id, name, description, date, time, location, ticket_price,
	ticket_quantity, available_tickets, image_url, collection_address,
	creator_address, transaction_hash, created_at, updated_at`

func (m *MySQLAdapter) CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Name, event.Description, event.Date, event.Time,
		event.Location, event.TicketPrice, event.TicketQuantity,
		event.AvailableTickets, event.ImageURL, event.CollectionAddress,
		event.CreatorAddress, event.TransactionHash,
		event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return domain.Event{}, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

func (m *MySQLAdapter) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT `+eventColumns+` FROM events WHERE id = ?`, id)

	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query event: %w", err)
	}
	return event, nil
}

func (m *MySQLAdapter) ListEvents(ctx context.Context) ([]domain.Event, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT `+eventColumns+` FROM events ORDER BY date ASC, time ASC`)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

func (m *MySQLAdapter) CreateTickets(ctx context.Context, eventID string, tickets []domain.Ticket) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, t := range tickets {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tickets (id, event_id, token_id, owner_address,
				purchase_transaction_hash, is_used, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, FALSE, ?, ?)`,
			t.ID, t.EventID, t.TokenID, t.OwnerAddress,
			t.PurchaseTransactionHash, t.CreatedAt, t.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert ticket: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE events
		SET available_tickets = available_tickets - ?, updated_at = NOW()
		WHERE id = ? AND available_tickets >= ?`,
		len(tickets), eventID, len(tickets),
	)
	if err != nil {
		return fmt.Errorf("decrement availability: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return port.ErrOptimisticLock
	}

	return tx.Commit()
}

const ticketColumns = `id, event_id, token_id, owner_address,
	purchase_transaction_hash, is_used, used_at, created_at, updated_at`

func (m *MySQLAdapter) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id)

	ticket, err := scanTicket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query ticket: %w", err)
	}
	return ticket, nil
}

func (m *MySQLAdapter) GetTicketWithEvent(ctx context.Context, id string) (*domain.Ticket, *domain.Event, error) {
	ticket, err := m.GetTicket(ctx, id)
	if err != nil || ticket == nil {
		return ticket, nil, err
	}
	event, err := m.GetEvent(ctx, ticket.EventID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, event, nil
}

func (m *MySQLAdapter) FindTicketsByOwner(ctx context.Context, ownerAddress string) ([]domain.Ticket, error) {
	return m.queryTickets(ctx, `
		SELECT `+ticketColumns+` FROM tickets
		WHERE owner_address = ?
		ORDER BY created_at DESC, id DESC`, ownerAddress)
}

// FindTicketsByOwnerWithEvents joins each ticket with its event row; the
// foreign key guarantees the event exists.
func (m *MySQLAdapter) FindTicketsByOwnerWithEvents(ctx context.Context, ownerAddress string) ([]domain.TicketWithEvent, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT t.id, t.event_id, t.token_id, t.owner_address,
			t.purchase_transaction_hash, t.is_used, t.used_at, t.created_at, t.updated_at,
			e.id, e.name, e.description, e.date, e.time, e.location,
			e.ticket_price, e.ticket_quantity, e.available_tickets, e.image_url,
			e.collection_address, e.creator_address, e.transaction_hash,
			e.created_at, e.updated_at
		FROM tickets t
		JOIN events e ON e.id = t.event_id
		WHERE t.owner_address = ?
		ORDER BY t.created_at DESC, t.id DESC`, ownerAddress)
	if err != nil {
		return nil, fmt.Errorf("query tickets with events: %w", err)
	}
	defer rows.Close()

	var results []domain.TicketWithEvent
	for rows.Next() {
		var t domain.Ticket
		var e domain.Event
		var usedAt sql.NullTime
		var description, imageURL sql.NullString
		err := rows.Scan(&t.ID, &t.EventID, &t.TokenID, &t.OwnerAddress,
			&t.PurchaseTransactionHash, &t.IsUsed, &usedAt, &t.CreatedAt, &t.UpdatedAt,
			&e.ID, &e.Name, &description, &e.Date, &e.Time, &e.Location,
			&e.TicketPrice, &e.TicketQuantity, &e.AvailableTickets, &imageURL,
			&e.CollectionAddress, &e.CreatorAddress, &e.TransactionHash,
			&e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan ticket with event: %w", err)
		}
		if usedAt.Valid {
			t.UsedAt = &usedAt.Time
		}
		e.Description = description.String
		e.ImageURL = imageURL.String
		event := e
		results = append(results, domain.TicketWithEvent{Ticket: t, Event: &event})
	}
	return results, rows.Err()
}

func (m *MySQLAdapter) FindTicketsByToken(ctx context.Context, tokenID string) ([]domain.Ticket, error) {
	return m.queryTickets(ctx, `
		SELECT `+ticketColumns+` FROM tickets WHERE token_id = ?`, tokenID)
}

func (m *MySQLAdapter) CountTicketsByBuyer(ctx context.Context, eventID, ownerAddress string) (int, error) {
	var count int
	err := m.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tickets WHERE event_id = ? AND owner_address = ?`,
		eventID, ownerAddress,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tickets: %w", err)
	}
	return count, nil
}

func (m *MySQLAdapter) MarkTicketUsed(ctx context.Context, id string, usedAt time.Time) (bool, error) {
	result, err := m.db.ExecContext(ctx, `
		UPDATE tickets
		SET is_used = TRUE, used_at = ?, updated_at = ?
		WHERE id = ? AND is_used = FALSE`,
		usedAt, usedAt, id,
	)
	if err != nil {
		return false, fmt.Errorf("mark ticket used: %w", err)
	}

	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (m *MySQLAdapter) TotalRevenue(ctx context.Context) (float64, error) {
	var total float64
	err := m.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(e.ticket_price), 0)
		FROM tickets t
		JOIN events e ON e.id = t.event_id`,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum revenue: %w", err)
	}
	return total, nil
}

func (m *MySQLAdapter) queryTickets(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, *ticket)
	}
	return tickets, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (*domain.Event, error) {
	var e domain.Event
	var description, imageURL sql.NullString
	err := s.Scan(&e.ID, &e.Name, &description, &e.Date, &e.Time, &e.Location,
		&e.TicketPrice, &e.TicketQuantity, &e.AvailableTickets, &imageURL,
		&e.CollectionAddress, &e.CreatorAddress, &e.TransactionHash,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Description = description.String
	e.ImageURL = imageURL.String
	return &e, nil
}

func scanTicket(s scanner) (*domain.Ticket, error) {
	var t domain.Ticket
	var usedAt sql.NullTime
	err := s.Scan(&t.ID, &t.EventID, &t.TokenID, &t.OwnerAddress,
		&t.PurchaseTransactionHash, &t.IsUsed, &usedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if usedAt.Valid {
		t.UsedAt = &usedAt.Time
	}
	return &t, nil
}
