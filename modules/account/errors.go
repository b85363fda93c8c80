package account

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/fintrack/handler"
	"github.com/dmitrymomot/fintrack/svc/auth"
)

var kindStatus = map[auth.Kind]int{
	auth.KindValidation:                http.StatusBadRequest,
	auth.KindConflict:                  http.StatusConflict,
	auth.KindInvalidCredentials:        http.StatusUnauthorized,
	auth.KindNotFound:                  http.StatusNotFound,
	auth.KindInvalidOrExpiredChallenge: http.StatusUnauthorized,
	auth.KindNotificationFailure:       http.StatusBadGateway,
	auth.KindUnauthenticated:           http.StatusUnauthorized,
	auth.KindTooManyAttempts:           http.StatusTooManyRequests,
}

// Sentinels whose text is safe to show clients, most specific first.
var public = []error{
	auth.ErrEmailTaken,
	auth.ErrTwoFactorAlreadyEnabled,
	auth.ErrTwoFactorNotEnabled,
	auth.ErrInvalidCredentials,
	auth.ErrAccountNotFound,
	auth.ErrInvalidOrExpiredChallenge,
	auth.ErrNotificationFailed,
	auth.ErrUnauthenticated,
	auth.ErrTooManyAttempts,
	auth.ErrValidation,
}

// ClassifyError maps auth errors to responses. Internal errors are left to
// the default 500 handling.
func ClassifyError(err error) (handler.ErrorInfo, bool) {
	kind := auth.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		return handler.ErrorInfo{}, false
	}

	info := handler.ErrorInfo{StatusCode: status, Code: kind.String()}
	for _, sentinel := range public {
		if errors.Is(err, sentinel) {
			info.Message = sentinel.Error()
			break
		}
	}
	return info, true
}
