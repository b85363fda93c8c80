package clientip

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"slices"
	"strings"
)

var ErrInvalidProxy = errors.New("clientip: invalid trusted proxy")

// Resolver determines the client address of a request.
type Resolver struct {
	trusted []netip.Prefix
	headers []string
}

func New(cfg Config) (*Resolver, error) {
	r := &Resolver{headers: cfg.Headers}
	for _, raw := range cfg.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "/") {
			addr, err := netip.ParseAddr(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidProxy, raw)
			}
			r.trusted = append(r.trusted, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
			continue
		}
		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidProxy, raw)
		}
		r.trusted = append(r.trusted, prefix.Masked())
	}
	return r, nil
}

// IP returns the client address. Forwarding headers are read only when the
// connection comes from a trusted proxy. X-Forwarded-For is walked from the
// right, skipping trusted hops, so a client cannot spoof the left-most entry.
func (res *Resolver) IP(r *http.Request) string {
	remote := remoteAddr(r.RemoteAddr)
	if !remote.IsValid() {
		return ""
	}
	if !res.isTrusted(remote) {
		return remote.String()
	}

	for _, header := range res.headers {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}
		hops := strings.Split(value, ",")
		for _, hop := range slices.Backward(hops) {
			addr, err := netip.ParseAddr(strings.TrimSpace(hop))
			if err != nil {
				break
			}
			addr = addr.Unmap()
			if !res.isTrusted(addr) {
				return addr.String()
			}
		}
	}
	return remote.String()
}

func (res *Resolver) isTrusted(addr netip.Addr) bool {
	for _, prefix := range res.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteAddr(s string) netip.Addr {
	host, _, err := net.SplitHostPort(s)
	if err != nil {
		host = s
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}
	}
	return addr.Unmap()
}
