package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/docgate/docgate/internal/auth"
	"github.com/docgate/docgate/internal/model"
)

type fakeKeyLookup struct {
	keys []*model.ServiceKey
	err  error
}

func (f *fakeKeyLookup) GetServiceKeysByPrefix(ctx context.Context, prefix string) ([]*model.ServiceKey, error) {
	return f.keys, f.err
}

func newTestServiceKey(t *testing.T) (*auth.GeneratedKey, *model.ServiceKey) {
	t.Helper()

	gen, err := auth.GenerateServiceKey(auth.EnvTest)
	if err != nil {
		t.Fatalf("GenerateServiceKey: %v", err)
	}
	return gen, &model.ServiceKey{
		ID:        "key-1",
		Name:      "billing-sync",
		KeyHash:   gen.Hash,
		KeyPrefix: gen.Prefix,
		CreatedAt: time.Now(),
	}
}

func TestServiceKeyAuth_ValidKey(t *testing.T) {
	t.Parallel()

	gen, key := newTestServiceKey(t)
	lookup := &fakeKeyLookup{keys: []*model.ServiceKey{key}}

	var gotKeyID string
	handler := ServiceKeyAuth(ServiceKeyConfig{Logger: testLogger(), Lookup: lookup})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if k := ServiceKeyFromContext(r.Context()); k != nil {
				gotKeyID = k.ID
			}
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodPut, "/internal/v1/users/u1/plan", nil)
	req.Header.Set("Authorization", "Bearer "+gen.Plaintext)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotKeyID != "key-1" {
		t.Errorf("service key not injected: id = %q", gotKeyID)
	}
}

func TestServiceKeyAuth_Rejections(t *testing.T) {
	t.Parallel()

	gen, key := newTestServiceKey(t)
	wrongGen, _ := auth.GenerateServiceKey(auth.EnvTest)

	now := time.Now()
	revoked := *key
	revoked.RevokedAt = &now

	tests := []struct {
		name   string
		header string
		lookup ServiceKeyLookup
	}{
		{"missing key", "", &fakeKeyLookup{}},
		{"malformed key", "Bearer not-a-service-key", &fakeKeyLookup{}},
		{"unknown prefix", "Bearer " + wrongGen.Plaintext, &fakeKeyLookup{}},
		{"wrong secret", "Bearer " + wrongGen.Plaintext, &fakeKeyLookup{keys: []*model.ServiceKey{key}}},
		{"revoked key", "Bearer " + gen.Plaintext, &fakeKeyLookup{keys: []*model.ServiceKey{&revoked}}},
		{"lookup error", "Bearer " + gen.Plaintext, &fakeKeyLookup{err: errors.New("db down")}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := ServiceKeyAuth(ServiceKeyConfig{Logger: testLogger(), Lookup: tt.lookup})(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					t.Error("handler should not be reached")
				}))

			req := httptest.NewRequest(http.MethodPut, "/internal/v1/users/u1/plan", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}
