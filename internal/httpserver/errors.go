package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
)

var statusByKind = []struct {
	kind   error
	status int
	msg    string
}{
	{service.ErrNotFound, http.StatusNotFound, "not found"},
	{service.ErrForbidden, http.StatusForbidden, "forbidden"},
	{service.ErrNoOp, http.StatusConflict, "nothing to change"},
	{service.ErrConflict, http.StatusConflict, "conflict"},
	{service.ErrUnauthorized, http.StatusUnauthorized, "No token"},
	{service.ErrInvalidToken, http.StatusUnauthorized, "Invalid token"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
	{service.ErrBadRequest, http.StatusBadRequest, "bad request"},
}

// fail logs err under op and converts it to the HTTP error the caller sees.
// Unclassified errors become a 500 with reason as the message.
func fail(l *slog.Logger, op string, err error, reason string) error {
	for _, k := range statusByKind {
		if errors.Is(err, k.kind) {
			msg := service.Message(err)
			if msg == "" {
				msg = k.msg
			}
			l.Warn(op+"_failed", "status", k.status, "reason", msg, "error", err)
			return echo.NewHTTPError(k.status, msg)
		}
	}
	l.Error(op+"_failed", "status", 500, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, reason)
}

func badBody(l *slog.Logger, op string, err error) error {
	l.Warn(op+"_failed", "status", 400, "reason", "invalid body", "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
}
