// Package logger настраивает zerolog для сервиса.
package logger

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/config"
	"github.com/rs/zerolog"
)

// New: в local пишем в консоль человекочитаемо, иначе JSON в stdout.
func New(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if cfg.IsLocal() {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", "rental-api").
		Str("env", cfg.Env).
		Logger()
}

// RequestLogger - одна строка на запрос, уровень по коду ответа.
func RequestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			var e *zerolog.Event
			switch {
			case status >= 500:
				e = log.Error()
			case status >= 400:
				e = log.Warn()
			default:
				e = log.Info()
			}
			if reqID := middleware.GetReqID(r.Context()); reqID != "" {
				e = e.Str("request_id", reqID)
			}
			e.Dur("latency", time.Since(start)).
				Int("status", status).
				Str("method", r.Method).
				Str("uri", r.RequestURI).
				Str("ip", r.RemoteAddr).
				Msg("API")
		})
	}
}
