package ratelimiter

import (
	"context"
	"time"
)

// Store keeps bucket state. ConsumeTokens must be atomic per key: it refills
// the bucket for elapsed intervals, then takes tokens only if enough are left.
// The returned remaining is negative when the request does not fit.
// Calling it with tokens == 0 reads the state.
type Store interface {
	ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (remaining int, resetAt time.Time, err error)
	Reset(ctx context.Context, key string) error
}

// refill applies the elapsed whole intervals to a bucket snapshot.
func refill(tokens int, last, now time.Time, cfg Config) (int, time.Time) {
	if now.Before(last) {
		return tokens, last
	}
	intervals := int(now.Sub(last) / cfg.RefillInterval)
	if intervals <= 0 {
		return tokens, last
	}
	// Bound the multiplication; a full bucket needs at most this many intervals.
	intervals = min(intervals, cfg.Capacity/cfg.RefillRate+1)
	return min(tokens+intervals*cfg.RefillRate, cfg.Capacity), last.Add(time.Duration(intervals) * cfg.RefillInterval)
}
