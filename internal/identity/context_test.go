package identity

import (
	"context"
	"testing"

	"github.com/docgate/docgate/internal/model"
)

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	id := &model.Identity{UID: "u1", Email: "u1@example.com", EmailVerified: true}
	ctx := ContextWithIdentity(context.Background(), id)

	got := FromContext(ctx)
	if got == nil {
		t.Fatal("FromContext returned nil")
	}
	if got.UID != "u1" {
		t.Errorf("UID = %q, want %q", got.UID, "u1")
	}
}

func TestFromContext_Anonymous(t *testing.T) {
	t.Parallel()

	if got := FromContext(context.Background()); got != nil {
		t.Errorf("FromContext on empty context = %+v, want nil", got)
	}
	if uid := UIDFromContext(context.Background()); uid != "" {
		t.Errorf("UIDFromContext = %q, want empty", uid)
	}
}
