package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Tim-0000/ai-fortune-line-bot/internal/ports"
)

// VIPRemaining is the sentinel allowance reported for exempt users.
const VIPRemaining = 999

// Allowance is the outcome of a quota check.
type Allowance struct {
	Allowed   bool
	Remaining int
	VIP       bool
}

// Ledger gates paid intents on a per-user daily usage counter. The
// reset boundary is local midnight by calendar-date comparison, not a
// rolling 24h window. A per-user mutex makes the check-then-charge
// pair atomic: webhook events run on separate goroutines, and two
// concurrent messages from one user must not both pass with a single
// use left.
type Ledger struct {
	store ports.QuotaStore
	limit int
	vips  map[string]bool
	loc   *time.Location
	now   func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLedger(store ports.QuotaStore, limit int, vipIDs []string, loc *time.Location) *Ledger {
	vips := make(map[string]bool, len(vipIDs))
	for _, id := range vipIDs {
		vips[id] = true
	}
	return &Ledger{
		store: store,
		limit: limit,
		vips:  vips,
		loc:   loc,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

func (l *Ledger) today() string {
	return l.now().In(l.loc).Format("2006-01-02")
}

func (l *Ledger) userLock(userID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[userID] = lock
	}
	return lock
}

// Reserve is the dispatch-path operation: the quota check and the
// charge for an allowed request, under the user's lock so concurrent
// requests from the same user serialize. The lock is never held across
// anything blocking; both store operations complete before any oracle
// call starts. Returns the allowance left after the charge.
func (l *Ledger) Reserve(ctx context.Context, userID string) (Allowance, error) {
	if l.vips[userID] {
		return Allowance{Allowed: true, Remaining: VIPRemaining, VIP: true}, nil
	}

	lock := l.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	date := l.today()
	count, err := l.store.Usage(ctx, userID, date)
	if err != nil {
		return Allowance{}, fmt.Errorf("read usage: %w", err)
	}
	if count >= l.limit {
		return Allowance{Allowed: false, Remaining: 0}, nil
	}

	count, err = l.store.Increment(ctx, userID, date)
	if err != nil {
		return Allowance{}, fmt.Errorf("increment usage: %w", err)
	}

	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Allowance{Allowed: true, Remaining: remaining}, nil
}

// Limit returns the configured daily limit.
func (l *Ledger) Limit() int {
	return l.limit
}
