package account

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/fintrack/handler"
	"github.com/dmitrymomot/fintrack/pkg/jwt"
	"github.com/dmitrymomot/fintrack/svc/auth"
)

// RequireUser verifies the bearer session token and stores the account ID in
// the request context. Challenge tokens are rejected.
func RequireUser(tokens jwt.Parser, onError handler.ErrorHandler[handler.Context]) func(http.Handler) http.Handler {
	reject := func(w http.ResponseWriter, r *http.Request, err error) {
		onError(handler.NewContext(w, r), errors.Join(auth.ErrUnauthenticated, err))
	}
	verify := jwt.MiddlewareWithConfig(jwt.MiddlewareConfig{
		Parser:       tokens,
		Purpose:      auth.PurposeSession,
		ErrorHandler: reject,
	})

	return func(next http.Handler) http.Handler {
		return verify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub, _ := jwt.SubjectFromContext(r.Context())
			userID, err := uuid.Parse(sub)
			if err != nil {
				reject(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.SetUserIDToContext(r.Context(), userID)))
		}))
	}
}
