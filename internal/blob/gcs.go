package blob

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/storage"

	"github.com/docgate/docgate/internal/model"
)

// GCS is a Store over a Google Cloud Storage bucket. Signing uses the V4
// scheme with the client's ambient credentials.
type GCS struct {
	client *storage.Client
	bucket string
}

// NewGCS opens a client against the named bucket.
func NewGCS(ctx context.Context, bucket string) (*GCS, error) {
	if bucket == "" {
		return nil, errors.New("bucket name required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

// Close releases the underlying client.
func (g *GCS) Close() error {
	return g.client.Close()
}

// Exists implements Store.
func (g *GCS) Exists(ctx context.Context, path string) (bool, error) {
	_, err := g.client.Bucket(g.bucket).Object(path).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat object: %w", err)
	}
	return true, nil
}

// Metadata implements Store.
func (g *GCS) Metadata(ctx context.Context, path string) (*model.ObjectMetadata, error) {
	attrs, err := g.client.Bucket(g.bucket).Object(path).Attrs(ctx)
	if err != nil {
		return nil, fmt.Errorf("object attrs: %w", err)
	}

	md := &model.ObjectMetadata{
		ContentType: attrs.ContentType,
		Size:        strconv.FormatInt(attrs.Size, 10),
		CreatedAt:   attrs.Created.UTC().Format(time.RFC3339),
	}
	if md.ContentType == "" {
		md.ContentType = model.MetadataUnknown
	}
	return md, nil
}

// SignRead implements Store.
func (g *GCS) SignRead(ctx context.Context, path string, ttl time.Duration) (string, error) {
	url, err := g.client.Bucket(g.bucket).SignedURL(path, &storage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(ttl),
		Scheme:  storage.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("sign read url: %w", err)
	}
	return url, nil
}
