// Package httpserver builds the console's *http.Server.
package httpserver

import (
	"log/slog"
	"net/http"
	"time"
)

const writeSlack = 5 * time.Second

// New builds the server. The write timeout leaves room past requestTimeout so
// a timed-out handler can still write its error envelope.
func New(addr string, handler http.Handler, requestTimeout time.Duration, logger *slog.Logger) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      requestTimeout + writeSlack,
		IdleTimeout:       2 * time.Minute,
	}
	if logger != nil {
		srv.ErrorLog = slog.NewLogLogger(logger.Handler(), slog.LevelWarn)
	}
	return srv
}
