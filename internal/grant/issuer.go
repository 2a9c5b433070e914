// Package grant issues time-boxed, read-only access grants for blobs inside
// the caller's ownership-scoped path prefix.
package grant

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/docgate/docgate/internal/apperr"
	"github.com/docgate/docgate/internal/blob"
	"github.com/docgate/docgate/internal/model"
)

const (
	// DefaultTTL applies when the caller does not ask for a specific TTL.
	DefaultTTL = 15 * time.Minute
	// MaxTTL caps caller-requested TTLs.
	MaxTTL = 24 * time.Hour
)

// Issuer validates ownership and mints signed read grants.
type Issuer struct {
	store  blob.Store
	logger *slog.Logger
}

// NewIssuer creates an Issuer over the given store.
func NewIssuer(store blob.Store, logger *slog.Logger) *Issuer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Issuer{store: store, logger: logger}
}

// ClampTTL normalizes a caller-requested TTL into the permitted range.
func ClampTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	if ttl > MaxTTL {
		return MaxTTL
	}
	return ttl
}

// Issue mints a grant for resourcePath on behalf of id.
//
// The ownership prefix check runs first and admits no admin-style bypass.
// Object existence is confirmed before signing; metadata is best-effort and
// degrades to "unknown" fields rather than failing the call. Issuance never
// mutates the object, so repeated calls yield independent grants.
func (i *Issuer) Issue(ctx context.Context, id *model.Identity, resourcePath string, ttl time.Duration) (*model.SignedGrant, error) {
	if id == nil {
		return nil, apperr.New(apperr.Unauthenticated, "authentication required")
	}
	if !model.OwnsPath(id.UID, resourcePath) {
		return nil, apperr.New(apperr.Forbidden, "path outside caller's resource scope")
	}

	exists, err := i.store.Exists(ctx, resourcePath)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "object existence check failed", err)
	}
	if !exists {
		return nil, apperr.New(apperr.NotFound, "object not found")
	}

	ttl = ClampTTL(ttl)
	issuedAt := time.Now().UTC()

	url, err := i.store.SignRead(ctx, resourcePath, ttl)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "signing failed", err)
	}

	metadata := model.UnknownMetadata()
	if md, err := i.store.Metadata(ctx, resourcePath); err == nil {
		metadata = *md
	} else {
		i.logger.Warn("grant metadata degraded",
			slog.String("uid", id.UID),
			slog.String("path", resourcePath),
			slog.String("error", err.Error()),
		)
	}

	return &model.SignedGrant{
		ID:           ulid.Make().String(),
		ResourcePath: resourcePath,
		OwnerUID:     id.UID,
		URL:          url,
		Capability:   model.CapabilityRead,
		IssuedAt:     issuedAt,
		ExpiresAt:    issuedAt.Add(ttl),
		Metadata:     metadata,
	}, nil
}
