package jwt_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fintrack/pkg/jwt"
)

func TestMiddlewareWithConfig(t *testing.T) {
	t.Parallel()
	service, err := jwt.NewFromString("secret")
	require.NoError(t, err)

	token, _, err := service.Issue("42", "session", time.Hour)
	require.NoError(t, err)
	challenge, _, err := service.Issue("42", "2fa", time.Hour)
	require.NoError(t, err)

	handler := jwt.MiddlewareWithConfig(jwt.MiddlewareConfig{
		Parser:  service,
		Purpose: "session",
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub, ok := jwt.SubjectFromContext(r.Context())
		assert.True(t, ok)
		claims, ok := jwt.GetClaims(r.Context())
		assert.True(t, ok)
		assert.Equal(t, "session", claims.Purpose)
		_, _ = w.Write([]byte(sub))
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid bearer", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"other purpose", "Bearer " + challenge, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "42", rec.Body.String())
			}
		})
	}
}

func TestMiddlewareWithConfig_CustomErrorHandler(t *testing.T) {
	t.Parallel()
	service, err := jwt.NewFromString("secret")
	require.NoError(t, err)

	var got error
	mw := jwt.MiddlewareWithConfig(jwt.MiddlewareConfig{
		Parser:  service,
		Purpose: "session",
		ErrorHandler: func(w http.ResponseWriter, _ *http.Request, err error) {
			got = err
			w.WriteHeader(http.StatusTeapot)
		},
	})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.ErrorIs(t, got, jwt.ErrInvalidToken)
}

func TestGetClaims_Empty(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := jwt.GetClaims(req.Context())
	assert.False(t, ok)
	_, ok = jwt.SubjectFromContext(req.Context())
	assert.False(t, ok)
}
