package api

import (
	"encoding/json/v2"
	"log/slog"
	"net"
	"net/http"
	"strings"

	domainerrors "github.com/omsapp/tag-server/internal/errors"
	"github.com/omsapp/tag-server/internal/ratelimit"
)

const apiPrefix = "/api/"

// RateLimitMiddleware limits requests under prefix per client IP.
// Rejected requests get 429 in the error envelope.
func RateLimitMiddleware(limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger, prefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}

			key := clientIP(r)
			if !limiter.Allow(key) {
				logger.Warn("Rate limit exceeded",
					"ip", key,
					"path", r.URL.Path,
				)
				writeEnvelopeError(w, newAPIError(http.StatusTooManyRequests, domainerrors.CodeRateLimited,
					"Too many requests. Please try again later.", nil), logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr. middleware.RealIP has
// already applied X-Forwarded-For and X-Real-IP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeEnvelopeError(w http.ResponseWriter, e *APIError, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.GetStatus())
	if err := json.MarshalWrite(w, e); err != nil {
		logger.Error("Failed to encode error response", "error", err)
	}
}
