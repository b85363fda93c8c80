// Package binder decodes HTTP request bodies into typed request structs.
//
// Only JSON is supported. The binder is strict: unknown fields, trailing
// data and oversized bodies are rejected with errors that wrap the package
// sentinels, so callers can map them to 4xx responses with errors.Is.
//
//	type LoginRequest struct {
//		Email    string `json:"email"`
//		Password string `json:"password"`
//	}
//
//	var req LoginRequest
//	if err := binder.JSON()(r, &req); err != nil {
//		// errors.Is(err, binder.ErrFailedToParseJSON) etc.
//	}
package binder
