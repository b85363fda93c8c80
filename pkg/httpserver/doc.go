// Package httpserver runs the HTTP server with graceful shutdown and provides
// liveness and readiness handlers.
package httpserver
