package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/fintrack/pkg/binder"
	"github.com/dmitrymomot/fintrack/pkg/logger"
	"github.com/dmitrymomot/fintrack/pkg/requestid"
	"github.com/dmitrymomot/fintrack/pkg/validator"
)

// ErrorInfo is what gets written for a failed request.
type ErrorInfo struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string][]string
}

// Classifier maps errors it recognises to an ErrorInfo.
type Classifier func(err error) (ErrorInfo, bool)

// Classify resolves err in order: field validation, binder failures, the
// given classifiers, HTTPError. Anything else is a 500 with a generic
// message so internal detail never reaches the client.
func Classify(err error, classifiers ...Classifier) ErrorInfo {
	if ve := validator.ExtractValidationErrors(err); len(ve) > 0 {
		return ErrorInfo{
			StatusCode: http.StatusBadRequest,
			Code:       "validation_error",
			Message:    "validation failed",
			Details:    ve.Fields(),
		}
	}

	switch {
	case errors.Is(err, binder.ErrBodyTooLarge):
		return infoFrom(ErrEntityTooLarge, err.Error())
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		return infoFrom(ErrUnsupportedMediaType, err.Error())
	case errors.Is(err, binder.ErrFailedToParseJSON):
		return infoFrom(ErrBadRequest, err.Error())
	}

	for _, classify := range classifiers {
		if info, ok := classify(err); ok {
			return info
		}
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return infoFrom(httpErr, http.StatusText(httpErr.Code))
	}
	return infoFrom(ErrInternalServerError, "internal server error")
}

func infoFrom(e HTTPError, message string) ErrorInfo {
	return ErrorInfo{StatusCode: e.Code, Code: e.Key, Message: message}
}

// NewErrorHandler logs every failure (client errors at warn, server errors at
// error) and writes the JSON error envelope.
func NewErrorHandler(log *slog.Logger, classifiers ...Classifier) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(logger.Component("http"))

	return func(ctx Context, err error) {
		r := ctx.Request()
		info := Classify(err, classifiers...)

		level := slog.LevelWarn
		if info.StatusCode >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.LogAttrs(r.Context(), level, "request failed",
			logger.RequestID(requestid.FromContext(r.Context())),
			logger.Error(err),
			slog.Int("status_code", info.StatusCode),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		if werr := writeError(ctx.ResponseWriter(), info); werr != nil {
			log.ErrorContext(r.Context(), "failed to write error response", logger.Error(werr))
		}
	}
}
