package middleware

import (
	"errors"
	"strings"

	"github.com/docgate/docgate/internal/model"
)

// Validation limits.
const (
	// MaxObjectPathLength is the maximum length for a resource path.
	MaxObjectPathLength = 1024

	// MaxDocumentCount is the maximum number of source documents per
	// merge request.
	MaxDocumentCount = 50

	// MaxTTLSeconds is the maximum requested grant lifetime in seconds.
	MaxTTLSeconds = 86400 // 24 hours
)

// Validation errors.
var (
	ErrPathTooLong      = errors.New("resource path exceeds maximum length")
	ErrPathTraversal    = errors.New("resource path contains traversal segments")
	ErrPathInvalid      = errors.New("resource path is invalid")
	ErrUnknownClass     = errors.New("unknown resource class")
	ErrUnknownTier      = errors.New("unknown plan tier")
	ErrTooManyDocuments = errors.New("too many source documents")
	ErrTTLOutOfRange    = errors.New("requested TTL out of range")
)

// ValidateResourcePath checks the shape of a client-supplied resource
// path before it reaches ownership checks.
func ValidateResourcePath(path string) error {
	if path == "" {
		return ErrPathInvalid
	}
	if len(path) > MaxObjectPathLength {
		return ErrPathTooLong
	}
	if strings.HasPrefix(path, "/") || strings.Contains(path, "//") {
		return ErrPathInvalid
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == "." || seg == ".." {
			return ErrPathTraversal
		}
	}
	return nil
}

// ValidateResourceClass checks that class is one of the known classes.
func ValidateResourceClass(class string) error {
	switch class {
	case model.ClassMerged, model.ClassRendered:
		return nil
	}
	return ErrUnknownClass
}

// ValidateTier checks that tier is one of the known plan tiers.
func ValidateTier(tier string) error {
	switch tier {
	case model.TierFree, model.TierPro:
		return nil
	}
	return ErrUnknownTier
}

// ValidateDocumentCount bounds the number of source documents.
func ValidateDocumentCount(n int) error {
	if n < 1 || n > MaxDocumentCount {
		return ErrTooManyDocuments
	}
	return nil
}

// ValidateTTLSeconds bounds a requested grant lifetime. Zero means
// "use the default" and is valid.
func ValidateTTLSeconds(ttl int64) error {
	if ttl < 0 || ttl > MaxTTLSeconds {
		return ErrTTLOutOfRange
	}
	return nil
}
