package logger

import (
	"log/slog"
	"strings"
	"time"
)

// Error records err under "error". Nil yields an empty Attr which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the account identifier under "user_id".
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// Email records a masked address under "email", keeping the first character
// of the local part and the domain.
func Email(addr string) slog.Attr {
	local, domain, ok := strings.Cut(addr, "@")
	if !ok || local == "" {
		return slog.String("email", "***")
	}
	return slog.String("email", local[:1]+"***@"+domain)
}

func RequestID(id string) slog.Attr {
	return slog.String("request_id", id)
}

// Component names the subsystem emitting the record.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Operation names the business operation, e.g. "login" or "enable_2fa".
func Operation(name string) slog.Attr {
	return slog.String("operation", name)
}

// Reason records a machine readable cause for a rejected operation.
func Reason(reason string) slog.Attr {
	return slog.String("reason", reason)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
