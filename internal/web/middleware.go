// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drivent Contributors

package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/drivent/drivent/internal/observability"
)

// requestLogger logs one line per request and counts it by route pattern.
// 5xx logs at ERROR, 4xx at WARN.
func requestLogger(logger *slog.Logger, metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			if metrics != nil {
				metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
			}

			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			logger.Log(r.Context(), level, "http request",
				"method", r.Method,
				"route", route,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", float64(time.Since(start).Microseconds())/1000,
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// recoverer turns a handler panic into a 500 and logs it.
func recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				//nolint:errorlint // re-panic the sentinel as chi does
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.ErrorContext(r.Context(), "handler panic",
					"panic", rec,
					"request_id", middleware.GetReqID(r.Context()),
				)
				writeJSON(w, http.StatusInternalServerError, struct{}{})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
