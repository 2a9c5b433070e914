package blob

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/docgate/docgate/internal/model"
)

type memObject struct {
	contentType string
	size        int64
	createdAt   time.Time
}

// Memory is an in-memory Store for tests and single-node dev mode. Signed
// URLs are not cryptographically meaningful; they only carry the path and
// expiry so tests can assert on them.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memObject

	// Fail switches let tests exercise degradation paths.
	FailExists   error
	FailMetadata error
	FailSign     error
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memObject)}
}

// Put seeds an object. Size is synthetic; no payload is stored.
func (m *Memory) Put(path, contentType string, size int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = memObject{
		contentType: contentType,
		size:        size,
		createdAt:   time.Now().UTC(),
	}
}

// Exists implements Store.
func (m *Memory) Exists(_ context.Context, path string) (bool, error) {
	if m.FailExists != nil {
		return false, m.FailExists
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[path]
	return ok, nil
}

// Metadata implements Store.
func (m *Memory) Metadata(_ context.Context, path string) (*model.ObjectMetadata, error) {
	if m.FailMetadata != nil {
		return nil, m.FailMetadata
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[path]
	if !ok {
		return nil, fmt.Errorf("object %s not found", path)
	}
	return &model.ObjectMetadata{
		ContentType: obj.contentType,
		Size:        strconv.FormatInt(obj.size, 10),
		CreatedAt:   obj.createdAt.Format(time.RFC3339),
	}, nil
}

// SignRead implements Store.
func (m *Memory) SignRead(_ context.Context, path string, ttl time.Duration) (string, error) {
	if m.FailSign != nil {
		return "", m.FailSign
	}
	expires := time.Now().Add(ttl).Unix()
	return fmt.Sprintf("https://blobs.invalid/%s?expires=%d", path, expires), nil
}
