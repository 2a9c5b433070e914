package authz

import (
	"testing"

	"github.com/docgate/docgate/internal/apperr"
	"github.com/docgate/docgate/internal/model"
)

func verifiedIdentity(uid string) *model.Identity {
	return &model.Identity{UID: uid, Email: uid + "@example.com", EmailVerified: true}
}

func TestRequireAuthenticated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		id         *model.Identity
		wantAllow  bool
		wantReason apperr.Code
	}{
		{"anonymous denied", nil, false, apperr.Unauthenticated},
		{"authenticated allowed", verifiedIdentity("u1"), true, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := RequireAuthenticated(tt.id, "")
			if d.Allowed != tt.wantAllow {
				t.Fatalf("Allowed = %v, want %v", d.Allowed, tt.wantAllow)
			}
			if d.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", d.Reason, tt.wantReason)
			}
		})
	}
}

func TestRequireOwnership(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		id         *model.Identity
		owner      string
		wantAllow  bool
		wantReason apperr.Code
	}{
		{"owner matches", verifiedIdentity("u1"), "u1", true, ""},
		{"owner mismatch", verifiedIdentity("u1"), "u2", false, apperr.Forbidden},
		{"mismatch even when fully verified", verifiedIdentity("u9"), "u1", false, apperr.Forbidden},
		{"empty owner never matches", verifiedIdentity("u1"), "", false, apperr.Forbidden},
		{"anonymous", nil, "u1", false, apperr.Unauthenticated},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := RequireOwnership(tt.id, tt.owner)
			if d.Allowed != tt.wantAllow {
				t.Fatalf("Allowed = %v, want %v", d.Allowed, tt.wantAllow)
			}
			if d.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", d.Reason, tt.wantReason)
			}
		})
	}
}

func TestRequireEmailVerified(t *testing.T) {
	t.Parallel()

	unverified := &model.Identity{UID: "u1", Email: "u1@example.com", EmailVerified: false}

	if d := RequireEmailVerified(unverified, ""); d.Allowed || d.Reason != apperr.EmailUnverified {
		t.Errorf("unverified: got %+v", d)
	}
	if d := RequireEmailVerified(verifiedIdentity("u1"), ""); !d.Allowed {
		t.Errorf("verified: got %+v", d)
	}
	if d := RequireEmailVerified(nil, ""); d.Allowed || d.Reason != apperr.Unauthenticated {
		t.Errorf("anonymous: got %+v", d)
	}
}

func TestOptionalAuthenticated(t *testing.T) {
	t.Parallel()

	if d := OptionalAuthenticated(nil, ""); !d.Allowed {
		t.Error("anonymous caller denied by optional policy")
	}
	if d := OptionalAuthenticated(verifiedIdentity("u1"), "u2"); !d.Allowed {
		t.Error("authenticated caller denied by optional policy")
	}
}

func TestEvaluate_FirstDenialWins(t *testing.T) {
	t.Parallel()

	// Anonymous caller: the unauthenticated denial must win regardless of
	// what follows in the chain.
	d := Evaluate(nil, "u1", RequireAuthenticated, RequireOwnership, RequireEmailVerified)
	if d.Allowed {
		t.Fatal("anonymous caller allowed")
	}
	if d.Reason != apperr.Unauthenticated {
		t.Errorf("Reason = %q, want %q", d.Reason, apperr.Unauthenticated)
	}

	// Verified caller targeting someone else: ownership denies even though
	// the other policies pass.
	d = Evaluate(verifiedIdentity("u1"), "u2", RequireAuthenticated, RequireEmailVerified, RequireOwnership)
	if d.Allowed {
		t.Fatal("cross-owner request allowed")
	}
	if d.Reason != apperr.Forbidden {
		t.Errorf("Reason = %q, want %q", d.Reason, apperr.Forbidden)
	}
}

func TestEvaluate_ShortCircuit(t *testing.T) {
	t.Parallel()

	evaluated := false
	spy := func(_ *model.Identity, _ string) Decision {
		evaluated = true
		return Allow()
	}

	Evaluate(nil, "", RequireAuthenticated, spy)
	if evaluated {
		t.Error("policy after a denial was evaluated")
	}
}

func TestEvaluate_EmptyChainAllows(t *testing.T) {
	t.Parallel()

	if d := Evaluate(nil, ""); !d.Allowed {
		t.Error("empty chain denied")
	}
}

func TestDecisionErr(t *testing.T) {
	t.Parallel()

	if err := Allow().Err(); err != nil {
		t.Errorf("Allow().Err() = %v, want nil", err)
	}

	err := Deny(apperr.Forbidden).Err()
	if err == nil {
		t.Fatal("Deny().Err() = nil")
	}
	if code := apperr.CodeOf(err); code != apperr.Forbidden {
		t.Errorf("code = %q, want %q", code, apperr.Forbidden)
	}
}
