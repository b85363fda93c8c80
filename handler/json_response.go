package handler

import (
	"encoding/json"
	"net/http"
)

// JSONResponse is the envelope of every JSON body.
type JSONResponse struct {
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status int
	body   JSONResponse
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	return writeJSON(w, j.status, j.body)
}

type JSONOption func(*jsonResponse)

func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) { r.status = status }
}

// JSON wraps v in the data field of the envelope.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK, body: JSONResponse{Data: v}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Message responds with {"data":{"message":text}}.
func Message(text string, opts ...JSONOption) Response {
	return JSON(map[string]string{"message": text}, opts...)
}

type errorResponse struct{ err error }

// Render hands the error to the ErrorHandler configured in Wrap.
func (e errorResponse) Render(http.ResponseWriter, *http.Request) error {
	return e.err
}

// Error defers err to the ErrorHandler, which classifies, logs and writes it.
func Error(err error) Response {
	if err == nil {
		err = ErrInternalServerError
	}
	return errorResponse{err: err}
}

func writeError(w http.ResponseWriter, info ErrorInfo) error {
	return writeJSON(w, info.StatusCode, JSONResponse{Error: &ErrorDetail{
		Code:    info.Code,
		Message: info.Message,
		Details: info.Details,
	}})
}

func writeJSON(w http.ResponseWriter, status int, body JSONResponse) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}
