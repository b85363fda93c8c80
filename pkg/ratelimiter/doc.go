// Package ratelimiter implements token bucket rate limiting.
//
// A Bucket enforces a Config over a Store. MemoryStore keeps state in process;
// RedisStore runs the refill-and-consume step as a Lua script so the limit is
// shared by every instance pointing at the same Redis:
//
//	limiter, err := ratelimiter.NewBucket(
//		ratelimiter.NewRedisStore(client, "rl:"),
//		ratelimiter.Config{Capacity: 5, RefillRate: 1, RefillInterval: time.Minute},
//		ratelimiter.WithKeyPrefix("login:"),
//	)
//	res, err := limiter.Allow(ctx, email)
//	if err == nil && !res.Allowed() {
//		// too many attempts
//	}
//
// A denied request does not consume tokens. Middleware applies a limiter to HTTP
// handlers keyed by a KeyFunc, e.g. clientip.KeyFromContext.
package ratelimiter
