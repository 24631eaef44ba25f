package ports

import (
	"context"

	"github.com/Tim-0000/ai-fortune-line-bot/internal/domain"
)

// QuotaStore persists per-user daily usage counters. Implementations
// must make per-key operations atomic with respect to concurrent
// requests from the same user; records for other dates read as zero.
type QuotaStore interface {
	// Usage returns the count recorded for userID on date (yyyy-mm-dd).
	Usage(ctx context.Context, userID, date string) (int, error)
	// Increment adds one to userID's count for date and returns the new
	// count. A record carrying a different date is reset first.
	Increment(ctx context.Context, userID, date string) (int, error)
}

// SessionStore holds at most one pending selection per user.
type SessionStore interface {
	// Get returns the pending selection without consuming it.
	Get(ctx context.Context, userID string) (domain.PendingSelection, bool, error)
	// Put stores a pending selection, overwriting any existing one.
	Put(ctx context.Context, sel domain.PendingSelection) error
	// Take atomically reads and deletes the pending selection.
	Take(ctx context.Context, userID string) (domain.PendingSelection, bool, error)
}

// DeckStore provides access to tarot decks.
type DeckStore interface {
	GetDeck(ctx context.Context, deckID string) (domain.Deck, error)
}
