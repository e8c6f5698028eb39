package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// WindowStore keeps fixed-window counters in Redis. The first increment of
// a window creates the key with its expiry in the same transaction, so a
// counter can never be left without a TTL.
type WindowStore struct {
	client goredis.UniversalClient
}

func NewWindowStore(client goredis.UniversalClient) *WindowStore {
	return &WindowStore{client: client}
}

func (s *WindowStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if window < time.Second {
		window = time.Second
	}

	var incr *goredis.IntCmd
	var pttl *goredis.DurationCmd
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, window)
		incr = pipe.Incr(ctx, key)
		pttl = pipe.PTTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("increment %s: %w", key, err)
	}

	// PTTL reports -1/-2 for missing TTL or key; callers treat <= 0 as unknown.
	return incr.Val(), pttl.Val(), nil
}
