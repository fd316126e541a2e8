package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/guessword/internal/middleware"
)

// Logging logs each API request and tags it with an X-Request-ID.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}
