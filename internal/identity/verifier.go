package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/docgate/docgate/internal/apperr"
	"github.com/docgate/docgate/internal/model"
)

// Verifier validates a raw bearer credential and produces the attested
// identity. Verification is a pure boundary: no side effects, and signature
// checking is delegated entirely to the identity provider's published keys.
type Verifier interface {
	Verify(ctx context.Context, rawCredential string) (*model.Identity, error)
}

// JWTVerifier validates provider-issued JWTs against a JWKS key set with
// issuer and audience checks.
type JWTVerifier struct {
	issuer   string
	audience string
	keys     KeyProvider
}

// KeyProvider supplies the current JWKS key set.
type KeyProvider interface {
	KeySet(ctx context.Context) (jwk.Set, error)
}

// StaticKeys is a KeyProvider over a fixed key set, used in tests and for
// file-based key configuration.
type StaticKeys struct {
	Set jwk.Set
}

// KeySet returns the fixed key set.
func (s StaticKeys) KeySet(_ context.Context) (jwk.Set, error) {
	return s.Set, nil
}

// CachedKeys fetches the provider JWKS over HTTP and refreshes it in the
// background, honoring cache headers.
type CachedKeys struct {
	cache *jwk.Cache
	url   string
}

// NewCachedKeys registers jwksURL with a background-refreshing cache.
func NewCachedKeys(ctx context.Context, jwksURL string) (*CachedKeys, error) {
	cache := jwk.NewCache(ctx)
	if err := cache.Register(jwksURL, jwk.WithMinRefreshInterval(5*time.Minute)); err != nil {
		return nil, fmt.Errorf("register jwks url: %w", err)
	}
	// Fetch eagerly so startup fails fast on a bad URL.
	if _, err := cache.Refresh(ctx, jwksURL); err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}
	return &CachedKeys{cache: cache, url: jwksURL}, nil
}

// KeySet returns the cached key set, refreshing if stale.
func (c *CachedKeys) KeySet(ctx context.Context) (jwk.Set, error) {
	return c.cache.Get(ctx, c.url)
}

// NewJWTVerifier builds a verifier for the given issuer and audience.
func NewJWTVerifier(issuer, audience string, keys KeyProvider) *JWTVerifier {
	return &JWTVerifier{
		issuer:   issuer,
		audience: audience,
		keys:     keys,
	}
}

// Verify parses and validates rawCredential and extracts the attested
// identity claims. All credential failures collapse to Unauthenticated; key
// set retrieval failures surface as Unavailable because the caller's
// credential may be perfectly fine.
func (v *JWTVerifier) Verify(ctx context.Context, rawCredential string) (*model.Identity, error) {
	if rawCredential == "" {
		return nil, apperr.New(apperr.Unauthenticated, "missing credential")
	}

	keySet, err := v.keys.KeySet(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unavailable, "identity provider keys unavailable", err)
	}

	token, err := jwt.ParseString(
		rawCredential,
		jwt.WithKeySet(keySet),
		jwt.WithValidate(true),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithContext(ctx),
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unauthenticated, "invalid credential", err)
	}

	if token.Subject() == "" {
		return nil, apperr.New(apperr.Unauthenticated, "credential has no subject")
	}

	id := &model.Identity{
		UID:       token.Subject(),
		IssuedAt:  token.IssuedAt(),
		ExpiresAt: token.Expiration(),
	}
	if raw, ok := token.Get("email"); ok {
		if email, ok := raw.(string); ok {
			id.Email = email
		}
	}
	if raw, ok := token.Get("email_verified"); ok {
		if verified, ok := raw.(bool); ok {
			id.EmailVerified = verified
		}
	}

	return id, nil
}
