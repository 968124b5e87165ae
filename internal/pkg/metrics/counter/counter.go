package counter

import (
	"context"
	"strconv"

	"github.com/thumbworks/freshbot/internal/pkg/cache"
)

const (
	confirmedKey = "webhook:counters:confirmed"
	deliveredKey = "webhook:counters:delivered"
	failedKey    = "webhook:counters:failed"
)

// AddConfirmed increments the verification handshake counter in Redis
func AddConfirmed() error {
	ctx := context.Background()
	return cache.GetClient().Incr(ctx, confirmedKey).Err()
}

// AddDelivered increments the delivered counter for an event type in Redis
func AddDelivered(eventType string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, deliveredKey, eventType, 1).Err()
}

// AddFailed increments the failed counter for an event type in Redis
func AddFailed(eventType string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, failedKey, eventType, 1).Err()
}

// Snapshot is a point-in-time read of all webhook counters
type Snapshot struct {
	Confirmed int64            `json:"confirmed"`
	Delivered map[string]int64 `json:"delivered"`
	Failed    map[string]int64 `json:"failed"`
}

// GetSnapshot reads all counters. Counters live in Redis only; they are
// operational signals, not billing data, and may reset with the cache.
func GetSnapshot() (*Snapshot, error) {
	ctx := context.Background()
	rdb := cache.GetClient()

	snapshot := &Snapshot{
		Delivered: map[string]int64{},
		Failed:    map[string]int64{},
	}

	if raw, err := rdb.Get(ctx, confirmedKey).Result(); err == nil {
		if v, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			snapshot.Confirmed = v
		}
	}

	delivered, err := rdb.HGetAll(ctx, deliveredKey).Result()
	if err != nil {
		return nil, err
	}
	for event, raw := range delivered {
		if v, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			snapshot.Delivered[event] = v
		}
	}

	failed, err := rdb.HGetAll(ctx, failedKey).Result()
	if err != nil {
		return nil, err
	}
	for event, raw := range failed {
		if v, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			snapshot.Failed[event] = v
		}
	}

	return snapshot, nil
}
