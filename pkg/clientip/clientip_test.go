package clientip_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fintrack/pkg/clientip"
)

func TestResolver_IP(t *testing.T) {
	t.Parallel()

	res, err := clientip.New(clientip.Config{
		TrustedProxies: []string{"10.0.0.0/8", "192.168.1.1"},
		Headers:        []string{"X-Forwarded-For", "X-Real-IP"},
	})
	require.NoError(t, err)

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"direct client", "203.0.113.7:5000", nil, "203.0.113.7"},
		{"untrusted peer headers ignored", "203.0.113.7:5000", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "203.0.113.7"},
		{"trusted proxy", "10.1.2.3:443", map[string]string{"X-Forwarded-For": "198.51.100.9"}, "198.51.100.9"},
		{"spoofed left entry", "10.1.2.3:443", map[string]string{"X-Forwarded-For": "1.1.1.1, 198.51.100.9, 10.0.0.5"}, "198.51.100.9"},
		{"single trusted ip", "192.168.1.1:80", map[string]string{"X-Real-IP": "198.51.100.10"}, "198.51.100.10"},
		{"malformed header falls back", "10.1.2.3:443", map[string]string{"X-Forwarded-For": "garbage"}, "10.1.2.3"},
		{"ipv6 client", "[2001:db8::1]:443", nil, "2001:db8::1"},
		{"ipv4 mapped ipv6", "[::ffff:203.0.113.7]:443", nil, "203.0.113.7"},
		{"invalid remote", "nonsense", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, res.IP(req))
		})
	}
}

func TestNew_InvalidProxy(t *testing.T) {
	t.Parallel()
	_, err := clientip.New(clientip.Config{TrustedProxies: []string{"10.0.0.0/99"}})
	assert.ErrorIs(t, err, clientip.ErrInvalidProxy)
	_, err = clientip.New(clientip.Config{TrustedProxies: []string{"not-an-ip"}})
	assert.ErrorIs(t, err, clientip.ErrInvalidProxy)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	res, err := clientip.New(clientip.Config{})
	require.NoError(t, err)

	var ip, ua string
	var okIP, okUA bool
	h := res.Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ip, okIP = clientip.Lookup(r.Context())
		ua, okUA = clientip.LookupUserAgent(r.Context())
		assert.Equal(t, ip, clientip.KeyFromContext(r))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:1234"
	req.Header.Set("User-Agent", strings.Repeat("x", 600))
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, okIP)
	assert.Equal(t, "203.0.113.7", ip)
	assert.True(t, okUA)
	assert.Len(t, ua, 512)

	_, ok := clientip.Lookup(req.Context())
	assert.False(t, ok)
}

func TestMiddleware_UserAgentStaysValidUTF8(t *testing.T) {
	t.Parallel()

	res, err := clientip.New(clientip.Config{})
	require.NoError(t, err)

	tests := []struct {
		name string
		ua   string
		want string
	}{
		{
			name: "multi-byte rune across the cap",
			ua:   strings.Repeat("a", 511) + "é-tail",
			want: strings.Repeat("a", 511),
		},
		{
			name: "invalid bytes are dropped",
			ua:   "Mozilla/5.0 \xff\xfe(X11)",
			want: "Mozilla/5.0 (X11)",
		},
		{
			name: "rune ending exactly at the cap",
			ua:   strings.Repeat("a", 510) + "é" + "zz",
			want: strings.Repeat("a", 510) + "é",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var ua string
			h := res.Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				ua, _ = clientip.LookupUserAgent(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("User-Agent", tt.ua)
			h.ServeHTTP(httptest.NewRecorder(), req)

			assert.True(t, utf8.ValidString(ua))
			assert.LessOrEqual(t, len(ua), 512)
			assert.Equal(t, tt.want, ua)
		})
	}
}
