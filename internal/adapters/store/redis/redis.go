// Package redis backs the quota and session stores with Redis so
// counters and pending selections survive restarts. Per-key atomicity
// comes from Redis itself (INCR, GETDEL).
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Tim-0000/ai-fortune-line-bot/internal/domain"
)

// Date-scoped keys make the daily reset implicit; the TTL only keeps
// yesterday's counters from accumulating forever.
const quotaTTL = 48 * time.Hour

func quotaKey(userID, date string) string {
	return "fortune:quota:" + userID + ":" + date
}

func sessionKey(userID string) string {
	return "fortune:session:" + userID
}

type QuotaStore struct {
	client *redis.Client
}

func NewQuotaStore(client *redis.Client) *QuotaStore {
	return &QuotaStore{client: client}
}

func (s *QuotaStore) Usage(ctx context.Context, userID, date string) (int, error) {
	n, err := s.client.Get(ctx, quotaKey(userID, date)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get quota: %w", err)
	}
	return n, nil
}

func (s *QuotaStore) Increment(ctx context.Context, userID, date string) (int, error) {
	key := quotaKey(userID, date)
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr quota: %w", err)
	}
	if n == 1 {
		if err := s.client.Expire(ctx, key, quotaTTL).Err(); err != nil {
			return 0, fmt.Errorf("redis expire quota: %w", err)
		}
	}
	return int(n), nil
}

type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Get(ctx context.Context, userID string) (domain.PendingSelection, bool, error) {
	raw, err := s.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.PendingSelection{}, false, nil
	}
	if err != nil {
		return domain.PendingSelection{}, false, fmt.Errorf("redis get session: %w", err)
	}
	return decode(raw)
}

func (s *SessionStore) Put(ctx context.Context, sel domain.PendingSelection) error {
	raw, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	// No TTL: a pending selection persists until consumed or overwritten.
	if err := s.client.Set(ctx, sessionKey(sel.UserID), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (s *SessionStore) Take(ctx context.Context, userID string) (domain.PendingSelection, bool, error) {
	raw, err := s.client.GetDel(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.PendingSelection{}, false, nil
	}
	if err != nil {
		return domain.PendingSelection{}, false, fmt.Errorf("redis getdel session: %w", err)
	}
	return decode(raw)
}

func decode(raw []byte) (domain.PendingSelection, bool, error) {
	var sel domain.PendingSelection
	if err := json.Unmarshal(raw, &sel); err != nil {
		return domain.PendingSelection{}, false, fmt.Errorf("unmarshal session: %w", err)
	}
	return sel, true, nil
}
