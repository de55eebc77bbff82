package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"rentwise/internal/platform/config"
)

// writeGrace lets a handler that hit the request deadline still write its
// timeout response before the connection is cut.
const writeGrace = 5 * time.Second

// New builds an HTTP server whose timeouts follow the per-request deadline.
// Server-level errors (TLS handshakes, malformed requests) go to logger.
func New(cfg config.Server, handler http.Handler, logger *slog.Logger) *http.Server {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.RequestTimeout,
		IdleTimeout:       2 * cfg.RequestTimeout,
	}
	if cfg.RequestTimeout > 0 {
		srv.WriteTimeout = cfg.RequestTimeout + writeGrace
	}
	if logger != nil {
		srv.ErrorLog = slog.NewLogLogger(logger.Handler(), slog.LevelWarn)
	}
	return srv
}
