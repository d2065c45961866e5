package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevYoma/zora-be/internal/core/domain"
)

func TestClassifyCode(t *testing.T) {
	cases := []struct {
		code string
		want CodeKind
	}{
		{"a1b2c3d4-e5f6-7890-abcd-ef0123456789", CodeTicketID},
		{"A1B2C3D4-E5F6-7890-ABCD-EF0123456789", CodeTicketID},
		{"0xABCDEF0123456789abcdef0123456789ABCDEF01", CodeWalletAddress},
		{"0X1234", CodeWalletAddress},
		{"12345", CodeTokenID},
		{"token-abc", CodeTokenID},
		// Not canonical UUID grouping, not 0x-prefixed: token ID.
		{"a1b2c3d4e5f67890abcdef0123456789", CodeTokenID},
		{"a1b2c3d4-e5f6-7890-abcd-ef01234567", CodeTokenID},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyCode(tc.code), "code %q", tc.code)
	}
}

func TestResolve_ByTicketID(t *testing.T) {
	db := newMockDB()
	svc := NewTicketService(db, newMockCache(), &fakeVerifier{}, testLogger(), false)

	id := "a1b2c3d4-e5f6-7890-abcd-ef0123456789"
	seedTicket(db, id, "event-1", "42", "0xaa")

	ticket, err := svc.Resolve(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, ticket.ID)
}

func TestResolve_ByWalletCaseInsensitive(t *testing.T) {
	db := newMockDB()
	svc := NewTicketService(db, newMockCache(), &fakeVerifier{}, testLogger(), false)

	// Stored lowercase at purchase time; looked up in mixed case.
	seedTicket(db, "ticket-1", "event-1", "42", "0xabcdef0123456789abcdef0123456789abcdef01")

	ticket, err := svc.Resolve(context.Background(), "0xABCDEF0123456789abcdef0123456789ABCDEF01")
	require.NoError(t, err)
	assert.Equal(t, "ticket-1", ticket.ID)
}

func TestResolve_WalletTieBreakMostRecent(t *testing.T) {
	db := newMockDB()
	svc := NewTicketService(db, newMockCache(), &fakeVerifier{}, testLogger(), false)

	owner := "0xaa"
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(48 * time.Hour)

	db.addTicket(domain.Ticket{ID: "ticket-old", EventID: "e1", TokenID: "1", OwnerAddress: owner, CreatedAt: older})
	db.addTicket(domain.Ticket{ID: "ticket-new", EventID: "e1", TokenID: "2", OwnerAddress: owner, CreatedAt: newer})

	for i := 0; i < 5; i++ {
		ticket, err := svc.Resolve(context.Background(), "0xAA")
		require.NoError(t, err)
		assert.Equal(t, "ticket-new", ticket.ID, "tie-break must be stable across calls")
	}
}

func TestResolve_WalletTieBreakEqualTimestamps(t *testing.T) {
	db := newMockDB()
	svc := NewTicketService(db, newMockCache(), &fakeVerifier{}, testLogger(), false)

	owner := "0xaa"
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	db.addTicket(domain.Ticket{ID: "ticket-a", EventID: "e1", TokenID: "1", OwnerAddress: owner, CreatedAt: at})
	db.addTicket(domain.Ticket{ID: "ticket-b", EventID: "e1", TokenID: "2", OwnerAddress: owner, CreatedAt: at})

	for i := 0; i < 5; i++ {
		ticket, err := svc.Resolve(context.Background(), owner)
		require.NoError(t, err)
		assert.Equal(t, "ticket-b", ticket.ID, "highest ID wins on equal timestamps")
	}
}

func TestResolve_ByTokenID(t *testing.T) {
	db := newMockDB()
	svc := NewTicketService(db, newMockCache(), &fakeVerifier{}, testLogger(), false)
	seedTicket(db, "ticket-1", "event-1", "token-42", "0xaa")

	ticket, err := svc.Resolve(context.Background(), "token-42")
	require.NoError(t, err)
	assert.Equal(t, "ticket-1", ticket.ID)
}

func TestResolve_AmbiguousTokenID(t *testing.T) {
	db := newMockDB()
	svc := NewTicketService(db, newMockCache(), &fakeVerifier{}, testLogger(), false)
	seedTicket(db, "ticket-1", "event-1", "dup-token", "0xaa")
	seedTicket(db, "ticket-2", "event-2", "dup-token", "0xbb")

	_, err := svc.Resolve(context.Background(), "dup-token")
	assert.ErrorIs(t, err, ErrAmbiguousCode)
}

func TestResolve_NotFound(t *testing.T) {
	db := newMockDB()
	svc := NewTicketService(db, newMockCache(), &fakeVerifier{}, testLogger(), false)

	for _, code := range []string{
		"a1b2c3d4-e5f6-7890-abcd-ef0123456789",
		"0xdeadbeef",
		"no-such-token",
		"",
		"   ",
	} {
		_, err := svc.Resolve(context.Background(), code)
		assert.ErrorIs(t, err, ErrTicketNotFound, "code %q", code)
	}
}
