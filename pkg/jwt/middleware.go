package jwt

import (
	"net/http"
	"strings"
)

// Parser verifies a raw token issued for purpose. *Service implements it.
type Parser interface {
	Parse(token, purpose string) (*Claims, error)
}

// TokenExtractorFunc extracts a raw token from a request.
type TokenExtractorFunc func(r *http.Request) (string, error)

// ErrorHandlerFunc writes the response for a rejected request.
type ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)

// MiddlewareConfig configures the verification middleware.
type MiddlewareConfig struct {
	Parser       Parser
	Purpose      string             // Required purpose claim
	Extractor    TokenExtractorFunc // Defaults to BearerTokenExtractor
	ErrorHandler ErrorHandlerFunc   // Defaults to a plain 401
}

// MiddlewareWithConfig verifies the request token and stores its claims in the
// request context. Rejected requests never reach next.
func MiddlewareWithConfig(config MiddlewareConfig) func(next http.Handler) http.Handler {
	if config.Extractor == nil {
		config.Extractor = BearerTokenExtractor
	}
	if config.ErrorHandler == nil {
		config.ErrorHandler = func(w http.ResponseWriter, _ *http.Request, _ error) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := config.Extractor(r)
			if err != nil {
				config.ErrorHandler(w, r, err)
				return
			}
			claims, err := config.Parser.Parse(token, config.Purpose)
			if err != nil {
				config.ErrorHandler(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(SetClaims(r.Context(), claims)))
		})
	}
}

// BearerTokenExtractor reads "Authorization: Bearer <token>" (RFC 6750).
// The scheme is matched case-insensitively.
func BearerTokenExtractor(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}
	return token, nil
}
