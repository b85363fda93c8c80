package main

import (
	"time"

	"github.com/dmitrymomot/fintrack/pkg/clientip"
	"github.com/dmitrymomot/fintrack/pkg/email"
	"github.com/dmitrymomot/fintrack/pkg/httpserver"
	"github.com/dmitrymomot/fintrack/pkg/logger"
	"github.com/dmitrymomot/fintrack/pkg/mongo"
	"github.com/dmitrymomot/fintrack/pkg/opensearch"
	"github.com/dmitrymomot/fintrack/pkg/pg"
	"github.com/dmitrymomot/fintrack/pkg/redis"
	"github.com/dmitrymomot/fintrack/pkg/totp"
	"github.com/dmitrymomot/fintrack/pkg/validator"
	"github.com/dmitrymomot/fintrack/svc/auth"
)

const (
	storePostgres = "postgres"
	storeMongo    = "mongo"
	storeMemory   = "memory"
)

type appConfig struct {
	Store string `env:"AUTH_STORE" envDefault:"postgres"` // postgres | mongo | memory

	// Per-IP request budget for the /auth routes.
	RequestsPerInterval int           `env:"HTTP_RATE_LIMIT" envDefault:"120"`
	RateLimitInterval   time.Duration `env:"HTTP_RATE_LIMIT_INTERVAL" envDefault:"1m"`
	ReadinessTimeout    time.Duration `env:"HTTP_READINESS_TIMEOUT" envDefault:"2s"`

	AuditBatchSize    int           `env:"AUDIT_BATCH_SIZE" envDefault:"100"`
	AuditBatchTimeout time.Duration `env:"AUDIT_BATCH_TIMEOUT" envDefault:"200ms"`

	Log        logger.Config
	HTTP       httpserver.Config
	ClientIP   clientip.Config
	Auth       auth.Config
	Password   validator.PasswordPolicy
	OTP        totp.Config
	Email      email.Config
	PG         pg.Config
	Mongo      mongo.Config
	Redis      redis.Config
	OpenSearch opensearch.Config
}
