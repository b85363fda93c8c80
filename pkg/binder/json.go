package binder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// DefaultMaxJSONSize is the default maximum size for JSON request bodies (1MB).
const DefaultMaxJSONSize = 1 << 20

// Bind decodes a request into v.
type Bind func(r *http.Request, v any) error

// JSONOption configures the JSON binder.
type JSONOption func(*jsonBinder)

type jsonBinder struct {
	maxSize   int64
	allowNull bool
}

// WithMaxSize overrides DefaultMaxJSONSize.
func WithMaxSize(n int64) JSONOption {
	return func(b *jsonBinder) {
		if n > 0 {
			b.maxSize = n
		}
	}
}

// WithEmptyBody accepts requests without a body, leaving v untouched.
func WithEmptyBody() JSONOption {
	return func(b *jsonBinder) { b.allowNull = true }
}

// JSON creates a strict JSON binder: the content type must be
// application/json, unknown fields are rejected and the body must hold
// exactly one value. String fields are decoded as-is; passwords rely on
// that, so no trimming happens here.
//
// Example:
//
//	r.Post("/login", handler.Wrap(login,
//		handler.WithBinder[handler.Context, LoginRequest](binder.JSON()),
//	))
func JSON(opts ...JSONOption) Bind {
	b := &jsonBinder{maxSize: DefaultMaxJSONSize}
	for _, opt := range opts {
		opt(b)
	}

	return func(r *http.Request, v any) error {
		if err := r.Context().Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrFailedToParseJSON, err)
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, b.maxSize+1))
		if err != nil {
			return fmt.Errorf("%w: failed to read request body: %w", ErrFailedToParseJSON, err)
		}
		if int64(len(body)) > b.maxSize {
			return fmt.Errorf("%w: max %d bytes", ErrBodyTooLarge, b.maxSize)
		}
		if len(bytes.TrimSpace(body)) == 0 && b.allowNull {
			return nil
		}

		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			return fmt.Errorf("%w: expected application/json", ErrMissingContentType)
		}
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil || mediaType != "application/json" {
			return fmt.Errorf("%w: got %s, expected application/json", ErrUnsupportedMediaType, contentType)
		}

		decoder := json.NewDecoder(bytes.NewReader(body))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(v); err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: empty body", ErrFailedToParseJSON)
			}
			return fmt.Errorf("%w: %w", ErrFailedToParseJSON, err)
		}

		var extra json.RawMessage
		if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: unexpected data after JSON object", ErrFailedToParseJSON)
		}
		return nil
	}
}
