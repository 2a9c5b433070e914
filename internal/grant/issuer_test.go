package grant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/docgate/docgate/internal/apperr"
	"github.com/docgate/docgate/internal/blob"
	"github.com/docgate/docgate/internal/model"
)

func testIdentity(uid string) *model.Identity {
	return &model.Identity{UID: uid, Email: uid + "@example.com", EmailVerified: true}
}

func TestIssue_OwnershipPrefix(t *testing.T) {
	t.Parallel()

	store := blob.NewMemory()
	store.Put("merged/u1/file.pdf", "application/pdf", 1024)
	store.Put("merged/u2/file.pdf", "application/pdf", 1024)
	issuer := NewIssuer(store, nil)

	tests := []struct {
		name     string
		uid      string
		path     string
		wantCode apperr.Code
	}{
		{"own path proceeds", "u1", "merged/u1/file.pdf", ""},
		{"foreign owner denied", "u1", "merged/u2/file.pdf", apperr.Forbidden},
		{"malformed path denied", "u1", "file.pdf", apperr.Forbidden},
		{"bare prefix denied", "u1", "merged/u1/", apperr.Forbidden},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g, err := issuer.Issue(context.Background(), testIdentity(tt.uid), tt.path, time.Minute)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("Issue() error = %v", err)
				}
				if g.OwnerUID != tt.uid {
					t.Errorf("OwnerUID = %q", g.OwnerUID)
				}
				return
			}
			if err == nil {
				t.Fatal("Issue() succeeded, want denial")
			}
			if code := apperr.CodeOf(err); code != tt.wantCode {
				t.Errorf("code = %q, want %q", code, tt.wantCode)
			}
		})
	}
}

func TestIssue_AnonymousDenied(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer(blob.NewMemory(), nil)
	_, err := issuer.Issue(context.Background(), nil, "merged/u1/file.pdf", time.Minute)
	if code := apperr.CodeOf(err); code != apperr.Unauthenticated {
		t.Errorf("code = %q, want %q", code, apperr.Unauthenticated)
	}
}

func TestIssue_MissingObject(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer(blob.NewMemory(), nil)
	_, err := issuer.Issue(context.Background(), testIdentity("u1"), "merged/u1/absent.pdf", time.Minute)
	if code := apperr.CodeOf(err); code != apperr.NotFound {
		t.Errorf("code = %q, want %q", code, apperr.NotFound)
	}
}

func TestIssue_TTLAndExpiry(t *testing.T) {
	t.Parallel()

	store := blob.NewMemory()
	store.Put("merged/u1/file.pdf", "application/pdf", 2048)
	issuer := NewIssuer(store, nil)

	ttl := 5 * time.Minute
	g, err := issuer.Issue(context.Background(), testIdentity("u1"), "merged/u1/file.pdf", ttl)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if got := g.ExpiresAt.Sub(g.IssuedAt); got != ttl {
		t.Errorf("expiry window = %v, want %v", got, ttl)
	}
	if g.Capability != model.CapabilityRead {
		t.Errorf("Capability = %q, want read", g.Capability)
	}
	if g.URL == "" {
		t.Error("URL empty")
	}
	if g.Metadata.ContentType != "application/pdf" {
		t.Errorf("ContentType = %q", g.Metadata.ContentType)
	}
	if g.Metadata.Size != "2048" {
		t.Errorf("Size = %q", g.Metadata.Size)
	}
}

func TestIssue_RepeatedIssuanceIndependent(t *testing.T) {
	t.Parallel()

	store := blob.NewMemory()
	store.Put("merged/u1/file.pdf", "application/pdf", 1)
	issuer := NewIssuer(store, nil)

	id := testIdentity("u1")
	g1, err := issuer.Issue(context.Background(), id, "merged/u1/file.pdf", time.Minute)
	if err != nil {
		t.Fatalf("first Issue() error = %v", err)
	}
	g2, err := issuer.Issue(context.Background(), id, "merged/u1/file.pdf", time.Minute)
	if err != nil {
		t.Fatalf("second Issue() error = %v", err)
	}

	if g1.ID == g2.ID {
		t.Error("grants share an ID")
	}
	if g2.ExpiresAt.Sub(g2.IssuedAt) != time.Minute {
		t.Error("second grant expiry not anchored to its own issuance")
	}

	// Issuance is read-only with respect to object state.
	exists, err := store.Exists(context.Background(), "merged/u1/file.pdf")
	if err != nil || !exists {
		t.Errorf("object changed by issuance: exists=%v err=%v", exists, err)
	}
}

func TestIssue_MetadataDegradesToUnknown(t *testing.T) {
	t.Parallel()

	store := blob.NewMemory()
	store.Put("merged/u1/file.pdf", "application/pdf", 1)
	store.FailMetadata = errors.New("attrs backend down")
	issuer := NewIssuer(store, nil)

	g, err := issuer.Issue(context.Background(), testIdentity("u1"), "merged/u1/file.pdf", time.Minute)
	if err != nil {
		t.Fatalf("Issue() error = %v, want metadata degradation only", err)
	}
	if g.Metadata.ContentType != model.MetadataUnknown ||
		g.Metadata.Size != model.MetadataUnknown ||
		g.Metadata.CreatedAt != model.MetadataUnknown {
		t.Errorf("Metadata = %+v, want all unknown", g.Metadata)
	}
}

func TestIssue_SignFailureIsInternal(t *testing.T) {
	t.Parallel()

	store := blob.NewMemory()
	store.Put("merged/u1/file.pdf", "application/pdf", 1)
	store.FailSign = errors.New("signer unavailable")
	issuer := NewIssuer(store, nil)

	_, err := issuer.Issue(context.Background(), testIdentity("u1"), "merged/u1/file.pdf", time.Minute)
	if code := apperr.CodeOf(err); code != apperr.Internal {
		t.Errorf("code = %q, want %q", code, apperr.Internal)
	}
}

func TestClampTTL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   time.Duration
		want time.Duration
	}{
		{"zero uses default", 0, DefaultTTL},
		{"negative uses default", -time.Minute, DefaultTTL},
		{"in range unchanged", time.Hour, time.Hour},
		{"above max capped", 48 * time.Hour, MaxTTL},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ClampTTL(tt.in); got != tt.want {
				t.Errorf("ClampTTL(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
