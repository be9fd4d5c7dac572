package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/omsapp/tag-server/internal/domain"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	contextKeyAccount  contextKey = "account"
	contextKeyLanguage contextKey = "language"
)

// authMiddleware attaches the account of a valid bearer token to the
// request context. Requests without one continue anonymously; handlers
// that need an account call requireAccount.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok || s.tokens == nil {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := s.tokens.Verify(token)
		if err != nil {
			s.logger.Debug("rejected access token",
				"request_id", middleware.GetReqID(r.Context()),
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyAccount, claims.Account())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// languageMiddleware resolves Accept-Language to a supported label language.
func (s *Server) languageMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.catalog == nil {
			next.ServeHTTP(w, r)
			return
		}
		lang := s.catalog.Detect(r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Language", lang)
		ctx := context.WithValue(r.Context(), contextKeyLanguage, lang)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accountFrom returns the authenticated account, if any.
func accountFrom(ctx context.Context) (domain.Account, bool) {
	account, ok := ctx.Value(contextKeyAccount).(domain.Account)
	return account, ok
}

// requireAccount returns the authenticated account or a 401.
func requireAccount(ctx context.Context) (domain.Account, error) {
	account, ok := accountFrom(ctx)
	if !ok {
		return domain.Account{}, huma.Error401Unauthorized("Missing or invalid access token")
	}
	return account, nil
}

// languageFrom returns the request language, or "" outside a request.
func languageFrom(ctx context.Context) string {
	lang, _ := ctx.Value(contextKeyLanguage).(string)
	return lang
}

// requestLogger logs one line per request with the slog logger.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
