// Package memory provides in-process quota and session stores. State
// is lost on restart; per-key atomicity comes from a store-wide mutex,
// which the operations never hold across anything blocking.
package memory

import (
	"context"
	"sync"

	"github.com/Tim-0000/ai-fortune-line-bot/internal/domain"
)

type usageRecord struct {
	date  string
	count int
}

// QuotaStore keeps one usage record per user. A record carrying a
// stale date is overwritten with a zero count on first read, so the
// reset is visible to concurrent checks immediately.
type QuotaStore struct {
	mu      sync.Mutex
	records map[string]*usageRecord
}

func NewQuotaStore() *QuotaStore {
	return &QuotaStore{records: make(map[string]*usageRecord)}
}

func (s *QuotaStore) Usage(_ context.Context, userID, date string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[userID]
	if !ok || rec.date != date {
		s.records[userID] = &usageRecord{date: date}
		return 0, nil
	}
	return rec.count, nil
}

func (s *QuotaStore) Increment(_ context.Context, userID, date string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[userID]
	if !ok || rec.date != date {
		rec = &usageRecord{date: date}
		s.records[userID] = rec
	}
	rec.count++
	return rec.count, nil
}

// SessionStore holds at most one pending selection per user.
type SessionStore struct {
	mu      sync.Mutex
	pending map[string]domain.PendingSelection
}

func NewSessionStore() *SessionStore {
	return &SessionStore{pending: make(map[string]domain.PendingSelection)}
}

func (s *SessionStore) Get(_ context.Context, userID string) (domain.PendingSelection, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel, ok := s.pending[userID]
	return sel, ok, nil
}

func (s *SessionStore) Put(_ context.Context, sel domain.PendingSelection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[sel.UserID] = sel
	return nil
}

func (s *SessionStore) Take(_ context.Context, userID string) (domain.PendingSelection, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel, ok := s.pending[userID]
	if ok {
		delete(s.pending, userID)
	}
	return sel, ok, nil
}
