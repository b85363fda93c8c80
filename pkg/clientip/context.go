package clientip

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"
)

type (
	ipContextKey        struct{}
	userAgentContextKey struct{}
)

const maxUserAgentLength = 512

// Middleware stores the client IP and user agent in the request context.
func (res *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ipContextKey{}, res.IP(r))
		ctx = context.WithValue(ctx, userAgentContextKey{}, cleanUserAgent(r.UserAgent()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// cleanUserAgent drops invalid UTF-8 and caps the length on a rune boundary.
func cleanUserAgent(ua string) string {
	ua = strings.ToValidUTF8(ua, "")
	if len(ua) <= maxUserAgentLength {
		return ua
	}
	n := maxUserAgentLength
	for n > 0 && !utf8.RuneStart(ua[n]) {
		n--
	}
	return ua[:n]
}

// FromContext returns the resolved client IP or "".
func FromContext(ctx context.Context) string {
	ip, _ := ctx.Value(ipContextKey{}).(string)
	return ip
}

// Lookup reports the IP stored by Middleware, if any.
func Lookup(ctx context.Context) (string, bool) {
	ip := FromContext(ctx)
	return ip, ip != ""
}

// LookupUserAgent reports the user agent stored by Middleware, if any.
func LookupUserAgent(ctx context.Context) (string, bool) {
	ua, _ := ctx.Value(userAgentContextKey{}).(string)
	return ua, ua != ""
}

// KeyFromContext is a rate limiter key function for requests that passed
// through Middleware.
func KeyFromContext(r *http.Request) string {
	return FromContext(r.Context())
}
