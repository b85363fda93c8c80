package ratelimiter

import (
	"net/http"
	"strconv"
	"time"
)

// KeyFunc derives the limiter key from a request. An empty key skips limiting.
type KeyFunc func(r *http.Request) string

// Middleware rejects requests over the limit with 429 and sets the
// X-RateLimit-* headers. Limiter failures are passed through to avoid locking
// users out when the store is down.
func Middleware(limiter RateLimiter, keyFunc KeyFunc, onLimit http.Handler) func(http.Handler) http.Handler {
	if onLimit == nil {
		onLimit = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		})
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			result, err := limiter.Allow(r.Context(), key)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed() {
				if retry := int(result.RetryAfter(time.Now()).Seconds()); retry > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(retry))
				}
				onLimit.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
