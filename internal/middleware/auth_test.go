package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/docgate/docgate/internal/apperr"
	"github.com/docgate/docgate/internal/identity"
	"github.com/docgate/docgate/internal/metrics"
	"github.com/docgate/docgate/internal/model"
)

type fakeVerifier struct {
	identity *model.Identity
	err      error
	calls    int
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (*model.Identity, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testIdentity() *model.Identity {
	now := time.Now()
	return &model.Identity{
		UID:           "user-1",
		Email:         "u1@example.com",
		EmailVerified: true,
		IssuedAt:      now,
		ExpiresAt:     now.Add(time.Hour),
	}
}

func TestAuth_ValidToken(t *testing.T) {
	t.Parallel()

	verifier := &fakeVerifier{identity: testIdentity()}
	rec := metrics.NewInMemory()

	var gotUID string
	handler := Auth(AuthConfig{Logger: testLogger(), Verifier: verifier, Metrics: rec})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := identity.FromContext(r.Context()); id != nil {
				gotUID = id.UID
			}
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodPost, "/documents/merge", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotUID != "user-1" {
		t.Errorf("identity not injected: uid = %q", gotUID)
	}
	if rec.Snapshot().AuthSuccesses != 1 {
		t.Errorf("AuthSuccesses = %d, want 1", rec.Snapshot().AuthSuccesses)
	}
}

func TestAuth_MissingToken(t *testing.T) {
	t.Parallel()

	verifier := &fakeVerifier{identity: testIdentity()}
	handler := Auth(AuthConfig{Logger: testLogger(), Verifier: verifier})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be reached")
		}))

	req := httptest.NewRequest(http.MethodPost, "/documents/merge", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if verifier.calls != 0 {
		t.Errorf("verifier called %d times for missing token", verifier.calls)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	t.Parallel()

	verifier := &fakeVerifier{err: apperr.New(apperr.Unauthenticated, "token expired")}
	handler := Auth(AuthConfig{Logger: testLogger(), Verifier: verifier})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be reached")
		}))

	req := httptest.NewRequest(http.MethodGet, "/usage", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_KeysetUnavailable(t *testing.T) {
	t.Parallel()

	verifier := &fakeVerifier{err: apperr.New(apperr.Unavailable, "keyset fetch failed")}
	handler := Auth(AuthConfig{Logger: testLogger(), Verifier: verifier})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be reached")
		}))

	req := httptest.NewRequest(http.MethodGet, "/usage", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestOptionalAuth_Anonymous(t *testing.T) {
	t.Parallel()

	verifier := &fakeVerifier{identity: testIdentity()}
	var sawIdentity bool
	handler := OptionalAuth(AuthConfig{Logger: testLogger(), Verifier: verifier})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sawIdentity = identity.FromContext(r.Context()) != nil
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/plan", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if sawIdentity {
		t.Error("anonymous request carried an identity")
	}
}

func TestOptionalAuth_InvalidTokenStillRejected(t *testing.T) {
	t.Parallel()

	verifier := &fakeVerifier{err: apperr.New(apperr.Unauthenticated, "bad signature")}
	handler := OptionalAuth(AuthConfig{Logger: testLogger(), Verifier: verifier})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be reached")
		}))

	req := httptest.NewRequest(http.MethodGet, "/plan", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestExtractBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"bearer", "Bearer abc123", "abc123"},
		{"missing", "", ""},
		{"wrong scheme", "Basic abc123", ""},
		{"bare token", "abc123", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := extractBearerToken(req); got != tt.want {
				t.Errorf("extractBearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}
