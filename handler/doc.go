// Package handler turns typed request handlers into http.HandlerFunc.
//
// Wrap decodes the request with the configured binders, calls the handler
// and renders its Response. Failures from any stage go to a single
// ErrorHandler, which writes the JSON envelope:
//
//	{"data": ..., "error": {"code": "...", "message": "...", "details": {...}}}
//
// Handlers return handler.JSON for success and handler.Error for failures;
// the error handler maps errors to status codes through Classify and any
// domain Classifier passed to NewErrorHandler.
//
//	onError := handler.NewErrorHandler(log, account.ClassifyError)
//	r.Post("/login", handler.Wrap(login,
//		handler.WithBinder[handler.Context, LoginRequest](binder.JSON()),
//		handler.WithErrorHandler[handler.Context, LoginRequest](onError),
//	))
package handler
