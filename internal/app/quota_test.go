package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tim-0000/ai-fortune-line-bot/internal/adapters/store/memory"
)

func newTestLedger(t *testing.T, vips ...string) *Ledger {
	t.Helper()
	l := NewLedger(memory.NewQuotaStore(), 3, vips, time.UTC)
	l.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return l
}

func TestLedger_FreshUserChargedOnFirstReserve(t *testing.T) {
	l := newTestLedger(t)

	a, err := l.Reserve(context.Background(), "U1")
	require.NoError(t, err)
	assert.True(t, a.Allowed)
	assert.Equal(t, 2, a.Remaining)
	assert.False(t, a.VIP)
}

func TestLedger_ExhaustsAfterLimitReserves(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	for i := range 3 {
		a, err := l.Reserve(ctx, "U1")
		require.NoError(t, err)
		require.True(t, a.Allowed, "reserve %d should be allowed", i)
		assert.Equal(t, 2-i, a.Remaining)
	}

	a, err := l.Reserve(ctx, "U1")
	require.NoError(t, err)
	assert.False(t, a.Allowed)
	assert.Equal(t, 0, a.Remaining)
}

func TestLedger_DateRolloverResetsCount(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	for range 3 {
		_, err := l.Reserve(ctx, "U1")
		require.NoError(t, err)
	}
	a, err := l.Reserve(ctx, "U1")
	require.NoError(t, err)
	require.False(t, a.Allowed)

	// Next calendar day: yesterday's full record reads as zero.
	l.now = func() time.Time { return time.Date(2025, 6, 2, 0, 0, 1, 0, time.UTC) }

	a, err = l.Reserve(ctx, "U1")
	require.NoError(t, err)
	assert.True(t, a.Allowed)
	assert.Equal(t, 2, a.Remaining)
}

func TestLedger_VIPAlwaysAllowed(t *testing.T) {
	l := newTestLedger(t, "Uvip")
	ctx := context.Background()

	for range 10 {
		a, err := l.Reserve(ctx, "Uvip")
		require.NoError(t, err)
		assert.True(t, a.Allowed)
		assert.True(t, a.VIP)
		assert.Equal(t, VIPRemaining, a.Remaining)
	}
}

func TestLedger_VIPReserveDoesNotTouchStore(t *testing.T) {
	store := memory.NewQuotaStore()
	l := NewLedger(store, 3, []string{"Uvip"}, time.UTC)
	ctx := context.Background()

	_, err := l.Reserve(ctx, "Uvip")
	require.NoError(t, err)

	n, err := store.Usage(ctx, "Uvip", l.today())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestLedger_UsersAreIndependent(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	for range 3 {
		_, err := l.Reserve(ctx, "U1")
		require.NoError(t, err)
	}

	a, err := l.Reserve(ctx, "U2")
	require.NoError(t, err)
	assert.True(t, a.Allowed)
	assert.Equal(t, 2, a.Remaining)
}

func TestLedger_ConcurrentReservesNeverOvershoot(t *testing.T) {
	l := newTestLedger(t)
	store := l.store
	ctx := context.Background()

	// One use left: of four simultaneous requests, exactly one may pass.
	for range 2 {
		_, err := store.Increment(ctx, "U1", l.today())
		require.NoError(t, err)
	}

	const attempts = 4
	var wg sync.WaitGroup
	allowed := make(chan Allowance, attempts)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := l.Reserve(ctx, "U1")
			assert.NoError(t, err)
			if a.Allowed {
				allowed <- a
			}
		}()
	}
	wg.Wait()
	close(allowed)

	var passed int
	for a := range allowed {
		passed++
		assert.Equal(t, 0, a.Remaining)
	}
	assert.Equal(t, 1, passed)

	n, err := store.Usage(ctx, "U1", l.today())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
