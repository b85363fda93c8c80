package binder_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fintrack/pkg/binder"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func newRequest(body, contentType string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req
}

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("valid body", func(t *testing.T) {
		t.Parallel()
		var got loginRequest
		err := binder.JSON()(newRequest(`{"email":"a@example.com","password":" pw "}`, "application/json; charset=utf-8"), &got)
		require.NoError(t, err)
		assert.Equal(t, "a@example.com", got.Email)
		assert.Equal(t, " pw ", got.Password, "strings are not trimmed")
	})

	tests := []struct {
		name        string
		body        string
		contentType string
		wantErr     error
	}{
		{"missing content type", `{"email":"a"}`, "", binder.ErrMissingContentType},
		{"form content type", `email=a`, "application/x-www-form-urlencoded", binder.ErrUnsupportedMediaType},
		{"unknown field", `{"email":"a","admin":true}`, "application/json", binder.ErrFailedToParseJSON},
		{"malformed", `{"email":`, "application/json", binder.ErrFailedToParseJSON},
		{"wrong type", `{"email":42}`, "application/json", binder.ErrFailedToParseJSON},
		{"empty body", ``, "application/json", binder.ErrFailedToParseJSON},
		{"trailing data", `{"email":"a"}{"email":"b"}`, "application/json", binder.ErrFailedToParseJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got loginRequest
			err := binder.JSON()(newRequest(tt.body, tt.contentType), &got)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("body too large", func(t *testing.T) {
		t.Parallel()
		body := `{"email":"` + strings.Repeat("a", 64) + `"}`
		var got loginRequest
		err := binder.JSON(binder.WithMaxSize(32))(newRequest(body, "application/json"), &got)
		assert.ErrorIs(t, err, binder.ErrBodyTooLarge)
	})

	t.Run("empty body allowed", func(t *testing.T) {
		t.Parallel()
		var got loginRequest
		err := binder.JSON(binder.WithEmptyBody())(newRequest("", ""), &got)
		require.NoError(t, err)
		assert.Empty(t, got.Email)
	})
}
