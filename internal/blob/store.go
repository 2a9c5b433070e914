// Package blob abstracts the object store holding processed documents and
// its URL-signing capability.
package blob

import (
	"context"
	"time"

	"github.com/docgate/docgate/internal/model"
)

// Store is the contract the grant issuer depends on. Implementations never
// mutate objects; signing is read-only by construction.
type Store interface {
	// Exists reports whether an object is present at path.
	Exists(ctx context.Context, path string) (bool, error)
	// Metadata describes the object at path. Callers treat failures as
	// best-effort and degrade.
	Metadata(ctx context.Context, path string) (*model.ObjectMetadata, error)
	// SignRead returns a time-boxed read-only URL for the object at path.
	SignRead(ctx context.Context, path string, ttl time.Duration) (string, error)
}
