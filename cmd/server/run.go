package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/fintrack/db/migrations"
	"github.com/dmitrymomot/fintrack/modules/account"
	"github.com/dmitrymomot/fintrack/pkg/audit"
	"github.com/dmitrymomot/fintrack/pkg/clientip"
	"github.com/dmitrymomot/fintrack/pkg/email"
	"github.com/dmitrymomot/fintrack/pkg/httpserver"
	"github.com/dmitrymomot/fintrack/pkg/jwt"
	"github.com/dmitrymomot/fintrack/pkg/logger"
	"github.com/dmitrymomot/fintrack/pkg/mongo"
	"github.com/dmitrymomot/fintrack/pkg/opensearch"
	"github.com/dmitrymomot/fintrack/pkg/pg"
	"github.com/dmitrymomot/fintrack/pkg/ratelimiter"
	"github.com/dmitrymomot/fintrack/pkg/redis"
	"github.com/dmitrymomot/fintrack/pkg/requestid"
	"github.com/dmitrymomot/fintrack/pkg/totp"
	"github.com/dmitrymomot/fintrack/svc/auth"
	"github.com/dmitrymomot/fintrack/svc/auth/memstore"
	"github.com/dmitrymomot/fintrack/svc/auth/mongostore"
	"github.com/dmitrymomot/fintrack/svc/auth/pgstore"
)

// closer collects shutdown steps, run in reverse order.
type closer []func(context.Context)

func (c *closer) add(fn func(context.Context)) { *c = append(*c, fn) }

func (c closer) close(ctx context.Context) {
	for i := len(c) - 1; i >= 0; i-- {
		c[i](ctx)
	}
}

func run(ctx context.Context, cfg appConfig) error {
	log := logger.FromConfig(cfg.Log, logger.WithContextExtractors(requestid.LoggerExtractor()))

	var cleanup closer
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		cleanup.close(shutdownCtx)
	}()

	checks := map[string]httpserver.Check{}
	var auditSinks audit.MultiStorage

	store, err := openStore(ctx, cfg, log, &cleanup, checks, &auditSinks)
	if err != nil {
		return err
	}

	limiterStore, err := openLimiterStore(ctx, cfg, log, &cleanup, checks)
	if err != nil {
		return err
	}

	if cfg.OpenSearch.Enabled() {
		client, err := opensearch.New(ctx, cfg.OpenSearch)
		if err != nil {
			return fmt.Errorf("opensearch: %w", err)
		}
		checks["opensearch"] = opensearch.Healthcheck(client)
		auditSinks = append(auditSinks, audit.NewOpenSearchStorage(client, cfg.OpenSearch.AuditIndex))
	}

	opts := []auth.Option{
		auth.WithLogger(log),
		auth.WithHasher(auth.NewBcryptHasher(cfg.Auth.BcryptCost)),
		auth.WithPasswordPolicy(cfg.Password),
		auth.WithNotifyTimeout(cfg.Auth.NotifyTimeout),
	}

	if len(auditSinks) > 0 {
		writer, err := audit.NewAsyncWriter(auditSinks, audit.AsyncOptions{
			BatchSize:    cfg.AuditBatchSize,
			BatchTimeout: cfg.AuditBatchTimeout,
		})
		if err != nil {
			return fmt.Errorf("audit: %w", err)
		}
		cleanup.add(func(ctx context.Context) {
			if err := writer.Close(ctx); err != nil {
				log.ErrorContext(ctx, "failed to flush audit events", logger.Error(err))
			}
		})
		auditLog, err := audit.NewLogger(writer,
			audit.WithUserIDExtractor(auth.LookupUserID),
			audit.WithRequestIDExtractor(requestid.Lookup),
			audit.WithIPExtractor(clientip.Lookup),
			audit.WithUserAgentExtractor(clientip.LookupUserAgent),
		)
		if err != nil {
			return fmt.Errorf("audit: %w", err)
		}
		opts = append(opts, auth.WithAudit(auditLog))
	}

	loginLimiter, err := ratelimiter.NewBucket(limiterStore, ratelimiter.Config{
		Capacity:       cfg.Auth.LoginAttempts,
		RefillRate:     cfg.Auth.LoginAttempts,
		RefillInterval: cfg.Auth.LoginAttemptsEvery,
	}, ratelimiter.WithKeyPrefix("login"))
	if err != nil {
		return fmt.Errorf("login limiter: %w", err)
	}
	otpLimiter, err := ratelimiter.NewBucket(limiterStore, ratelimiter.Config{
		Capacity:       cfg.Auth.OTPAttempts,
		RefillRate:     cfg.Auth.OTPAttempts,
		RefillInterval: cfg.Auth.OTPAttemptsEvery,
	}, ratelimiter.WithKeyPrefix("otp"))
	if err != nil {
		return fmt.Errorf("otp limiter: %w", err)
	}
	opts = append(opts, auth.WithLoginLimiter(loginLimiter), auth.WithOTPLimiter(otpLimiter))

	signer, err := jwt.NewFromString(cfg.Auth.JWTSecret, jwt.WithIssuer(cfg.Auth.JWTIssuer))
	if err != nil {
		return fmt.Errorf("jwt: %w", err)
	}
	svc, err := newAuthService(cfg, store, signer, opts)
	if err != nil {
		return err
	}

	ipLimiter, err := ratelimiter.NewBucket(limiterStore, ratelimiter.Config{
		Capacity:       cfg.RequestsPerInterval,
		RefillRate:     cfg.RequestsPerInterval,
		RefillInterval: cfg.RateLimitInterval,
	}, ratelimiter.WithKeyPrefix("ip"))
	if err != nil {
		return fmt.Errorf("ip limiter: %w", err)
	}
	resolver, err := clientip.New(cfg.ClientIP)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(resolver.Middleware)

	r.Get("/healthz", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(log, cfg.ReadinessTimeout, checks))
	r.Route("/auth", func(r chi.Router) {
		r.Use(ratelimiter.Middleware(ipLimiter, clientip.KeyFromContext, nil))
		r.Mount("/", account.New(svc, signer, account.WithLogger(log)).Router())
	})

	log.InfoContext(ctx, "starting", slog.String("store", cfg.Store), slog.Bool("audit", len(auditSinks) > 0))
	return httpserver.New(cfg.HTTP, httpserver.WithLogger(log)).Run(ctx, r)
}

func openStore(ctx context.Context, cfg appConfig, log *slog.Logger, cleanup *closer, checks map[string]httpserver.Check, sinks *audit.MultiStorage) (auth.CredentialStore, error) {
	switch cfg.Store {
	case storePostgres:
		pool, err := pg.Connect(ctx, cfg.PG)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		cleanup.add(func(context.Context) { pool.Close() })
		if err := pg.Migrate(ctx, pool, migrations.FS, cfg.PG, log); err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		checks["postgres"] = pg.Healthcheck(pool)
		*sinks = append(*sinks, audit.NewPostgresStorage(pool))
		return pgstore.New(pool), nil

	case storeMongo:
		client, err := mongo.New(ctx, cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		cleanup.add(func(ctx context.Context) { _ = client.Disconnect(ctx) })
		checks["mongo"] = mongo.Healthcheck(client)
		store, err := mongostore.New(ctx, client.Database(cfg.Mongo.Database))
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		return store, nil

	case storeMemory:
		log.WarnContext(ctx, "using in-memory credential store, accounts are lost on restart")
		return memstore.New(), nil
	}
	return nil, fmt.Errorf("unknown AUTH_STORE %q", cfg.Store)
}

func openLimiterStore(ctx context.Context, cfg appConfig, log *slog.Logger, cleanup *closer, checks map[string]httpserver.Check) (ratelimiter.Store, error) {
	if !cfg.Redis.Enabled() {
		log.InfoContext(ctx, "REDIS_URL not set, attempt limits are per instance")
		store := ratelimiter.NewMemoryStore()
		cleanup.add(func(context.Context) { store.Close() })
		return store, nil
	}

	client, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	cleanup.add(func(context.Context) { _ = client.Close() })
	checks["redis"] = redis.Healthcheck(client)
	return ratelimiter.NewRedisStore(client, "fintrack:ratelimit"), nil
}

func newAuthService(cfg appConfig, store auth.CredentialStore, signer *jwt.Service, opts []auth.Option) (*auth.Service, error) {
	otpOpts := []auth.OTPOption{auth.WithMailedCodeTTL(cfg.Auth.MailedCodeTTL)}
	if cfg.OTP.EncryptionKey != "" {
		key, err := totp.DecodeEncryptionKey(cfg.OTP.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("totp: %w", err)
		}
		otpOpts = append(otpOpts, auth.WithEncryptionKey(key))
	}
	otp, err := auth.NewOTPEngine(cfg.OTP.Issuer, []byte(cfg.OTP.CodePepper), otpOpts...)
	if err != nil {
		return nil, err
	}

	sender, err := email.New(cfg.Email)
	if err != nil {
		return nil, fmt.Errorf("email: %w", err)
	}

	svc, err := auth.NewService(
		store,
		auth.NewSessionTokens(signer, cfg.Auth.SessionTTL, cfg.Auth.ChallengeTTL),
		otp,
		auth.NewEmailNotifier(sender, cfg.OTP.Issuer),
		opts...,
	)
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}
	return svc, nil
}
