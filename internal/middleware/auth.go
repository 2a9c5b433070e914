package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/docgate/docgate/internal/apperr"
	"github.com/docgate/docgate/internal/auth"
	"github.com/docgate/docgate/internal/cache"
	"github.com/docgate/docgate/internal/identity"
	"github.com/docgate/docgate/internal/metrics"
	"github.com/docgate/docgate/internal/model"
)

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Verifier identity.Verifier
	Cache    *cache.Cache // optional; nil disables identity caching
	Metrics  metrics.Recorder
}

// Auth returns a middleware that authenticates requests with a bearer
// token. The verified identity is injected into the request context.
// Requests without a valid token are rejected with 401.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return authMiddleware(cfg, true)
}

// OptionalAuth returns a middleware that attaches an identity when a
// valid bearer token is present but lets anonymous requests through.
// A token that is present but invalid is still rejected.
func OptionalAuth(cfg AuthConfig) func(http.Handler) http.Handler {
	return authMiddleware(cfg, false)
}

func authMiddleware(cfg AuthConfig, required bool) func(http.Handler) http.Handler {
	rec := cfg.Metrics
	if rec == nil {
		rec = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				if !required {
					next.ServeHTTP(w, r)
					return
				}
				rec.IncAuthFailure(string(apperr.Unauthenticated))
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			// Check cache first. The cache key is a digest of the token;
			// the token itself never reaches Redis or the logs.
			var id *model.Identity
			tokenHash := auth.QuickHash(token)
			if cfg.Cache != nil {
				id, _ = cfg.Cache.GetIdentity(r.Context(), tokenHash)
			}
			cacheHit := id != nil

			if cacheHit {
				rec.IncAuthCacheHit()
			} else {
				rec.IncAuthCacheMiss()

				verified, err := cfg.Verifier.Verify(r.Context(), token)
				if err != nil {
					code := apperr.CodeOf(err)
					rec.IncAuthFailure(string(code))
					cfg.Logger.Warn("authentication failed",
						slog.String("reason", "invalid_token"),
						slog.String("code", string(code)),
						slog.String("ip", r.RemoteAddr),
						slog.String("endpoint", r.Method+" "+r.URL.Path),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					if code == apperr.Unavailable {
						writeVerifierUnavailable(w)
						return
					}
					writeAuthError(w)
					return
				}
				id = verified

				if cfg.Cache != nil {
					_ = cfg.Cache.SetIdentity(r.Context(), tokenHash, id)
				}
			}

			rec.IncAuthSuccess()
			cfg.Logger.Info("authentication successful",
				slog.String("uid", id.UID),
				slog.Bool("email_verified", id.EmailVerified),
				slog.Bool("cache_hit", cacheHit),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := identity.ContextWithIdentity(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken extracts the bearer token from the Authorization
// header. Returns "" when the header is missing or not a bearer scheme.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHENTICATED","message":"Invalid or missing credentials"}}`))
}

// writeVerifierUnavailable writes a 503 when the signing keys cannot be
// fetched. Distinct from 401 so clients know to retry.
func writeVerifierUnavailable(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAVAILABLE","message":"Token verification temporarily unavailable"}}`))
}
