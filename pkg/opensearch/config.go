package opensearch

// Config configures the OpenSearch client. No addresses means OpenSearch is not used.
type Config struct {
	Addresses  []string `env:"OPENSEARCH_ADDRESSES" envSeparator:","`
	Username   string   `env:"OPENSEARCH_USERNAME"`
	Password   string   `env:"OPENSEARCH_PASSWORD"`
	MaxRetries int      `env:"OPENSEARCH_MAX_RETRIES" envDefault:"3"`
	AuditIndex string   `env:"OPENSEARCH_AUDIT_INDEX" envDefault:"auth-audit"`
}

// Enabled reports whether at least one address is configured.
func (c Config) Enabled() bool { return len(c.Addresses) > 0 }
