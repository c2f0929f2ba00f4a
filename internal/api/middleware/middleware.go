// Package middleware binds the shared HTTP middleware to the API's JSON
// error format.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/cutgame/internal/api/apierr"
	"github.com/mcoot/cutgame/internal/middleware"
)

// Logging logs every API request with its request id. Install it before
// Recovery.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}

// Recovery answers a panicking API handler with a JSON internal error
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
