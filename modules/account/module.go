package account

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/fintrack/handler"
	"github.com/dmitrymomot/fintrack/pkg/binder"
	"github.com/dmitrymomot/fintrack/pkg/jwt"
	"github.com/dmitrymomot/fintrack/pkg/logger"
)

type Module struct {
	svc     Service
	tokens  jwt.Parser
	log     *slog.Logger
	onError handler.ErrorHandler[handler.Context]
}

type Option func(*Module)

func WithLogger(log *slog.Logger) Option {
	return func(m *Module) {
		if log != nil {
			m.log = log
		}
	}
}

// New builds the module. tokens verifies the session tokens issued by svc.
func New(svc Service, tokens jwt.Parser, opts ...Option) *Module {
	m := &Module{svc: svc, tokens: tokens, log: logger.Discard()}
	for _, opt := range opts {
		opt(m)
	}
	m.onError = handler.NewErrorHandler(m.log, ClassifyError)
	return m
}

// Router returns the routes listed in the package doc. Mount it at /auth.
func (m *Module) Router() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", route(m, m.register, binder.JSON()))
	r.Post("/login", route(m, m.login, binder.JSON()))
	r.Post("/login/2fa", route(m, m.completeLogin, binder.JSON()))
	r.Post("/login/2fa/email", route(m, m.requestLoginChallenge, binder.JSON()))

	r.Group(func(r chi.Router) {
		r.Use(RequireUser(m.tokens, m.onError))

		r.Get("/user", route(m, m.getUser))
		r.Put("/user", route(m, m.updateUser, binder.JSON()))
		r.Post("/change-password", route(m, m.changePassword, binder.JSON()))
		r.Post("/enable-2fa", route(m, m.enableTwoFactor))
		r.Post("/disable-2fa", route(m, m.disableTwoFactor, binder.JSON(binder.WithEmptyBody())))
		r.Post("/verify-2fa", route(m, m.verifyTwoFactor, binder.JSON()))
		r.Post("/sendEmail-2fa", route(m, m.sendEmailChallenge))
		r.Post("/verifyEmail-2fa", route(m, m.verifyEmailChallenge, binder.JSON()))
	})

	return r
}

func route[R any](m *Module, h handler.HandlerFunc[handler.Context, R], binders ...binder.Bind) http.HandlerFunc {
	return handler.Wrap(h,
		handler.WithBinders[handler.Context, R](binders...),
		handler.WithErrorHandler[handler.Context, R](m.onError),
		handler.WithDecorators[handler.Context, R](noStore[R]),
	)
}

// noStore marks handler responses as uncacheable.
func noStore[R any](next handler.HandlerFunc[handler.Context, R]) handler.HandlerFunc[handler.Context, R] {
	return func(ctx handler.Context, req R) handler.Response {
		ctx.ResponseWriter().Header().Set("Cache-Control", "no-store")
		return next(ctx, req)
	}
}
