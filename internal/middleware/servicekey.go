package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/docgate/docgate/internal/auth"
	"github.com/docgate/docgate/internal/model"
)

const (
	// minKeyAuthDuration is the minimum time to spend on service-key
	// auth to prevent timing attacks.
	minKeyAuthDuration = 200 * time.Millisecond
)

// ServiceKeyLookup resolves candidate keys for a key prefix.
type ServiceKeyLookup interface {
	GetServiceKeysByPrefix(ctx context.Context, prefix string) ([]*model.ServiceKey, error)
}

type serviceKeyCtxKey struct{}

// ServiceKeyConfig holds configuration for the service-key middleware.
type ServiceKeyConfig struct {
	Logger *slog.Logger
	Lookup ServiceKeyLookup
}

// ServiceKeyAuth returns a middleware that authenticates internal
// endpoints with a service key. It parses the key from the
// Authorization header, resolves candidates by prefix and verifies the
// presented key against each candidate's hash.
func ServiceKeyAuth(cfg ServiceKeyConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()

			// Ensure consistent timing regardless of outcome
			defer func() {
				elapsed := time.Since(startTime)
				if elapsed < minKeyAuthDuration {
					time.Sleep(minKeyAuthDuration - elapsed)
				}
			}()

			key := extractBearerToken(r)
			if key == "" {
				key = r.Header.Get("X-Service-Key")
			}
			if key == "" {
				cfg.Logger.Warn("service key auth failed",
					slog.String("reason", "missing_key"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			parsed, err := auth.ParseServiceKey(key)
			if err != nil {
				cfg.Logger.Warn("service key auth failed",
					slog.String("reason", "invalid_format"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			keys, err := cfg.Lookup.GetServiceKeysByPrefix(r.Context(), parsed.Prefix)
			if err != nil {
				cfg.Logger.Error("database error during service key auth",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			// Verify against each candidate (handles prefix collisions)
			var matched *model.ServiceKey
			for _, k := range keys {
				ok, err := auth.VerifyKey(key, k.KeyHash)
				if err != nil {
					continue
				}
				if ok {
					matched = k
					break
				}
			}

			if matched == nil || matched.IsRevoked() {
				cfg.Logger.Warn("service key auth failed",
					slog.String("reason", "invalid_key"),
					slog.String("key_prefix", parsed.Prefix),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			cfg.Logger.Info("service key auth successful",
				slog.String("key_id", matched.ID),
				slog.String("key_prefix", matched.KeyPrefix),
				slog.String("key_name", matched.Name),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := context.WithValue(r.Context(), serviceKeyCtxKey{}, matched)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ServiceKeyFromContext returns the authenticated service key, or nil.
func ServiceKeyFromContext(ctx context.Context) *model.ServiceKey {
	key, _ := ctx.Value(serviceKeyCtxKey{}).(*model.ServiceKey)
	return key
}
