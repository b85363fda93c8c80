package ratelimiter

import "time"

// Result describes the bucket state after a request.
type Result struct {
	Limit     int       // Bucket capacity
	Remaining int       // Tokens left; negative when the request was denied
	ResetAt   time.Time // Next refill
}

// Allowed reports whether the request fit into the bucket.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter is the wait until the next refill for a denied request.
func (r *Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(r.ResetAt.Sub(now), 0)
}

// Config describes a token bucket.
type Config struct {
	Capacity       int           // Burst size
	RefillRate     int           // Tokens added per interval
	RefillInterval time.Duration // Refill period
}
