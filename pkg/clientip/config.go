package clientip

// Config lists the proxies whose forwarding headers are believed. With no
// trusted proxies the connection address is always used.
type Config struct {
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`                                    // CIDRs or single IPs
	Headers        []string `env:"CLIENT_IP_HEADERS" envSeparator:"," envDefault:"X-Forwarded-For,X-Real-IP"` // checked in order
}
