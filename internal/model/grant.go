// Package model defines domain entities for the application.
package model

import "time"

// MetadataUnknown is substituted for object metadata fields that could not be
// fetched. Metadata is best-effort and never fails a grant.
const MetadataUnknown = "unknown"

// ObjectMetadata is a best-effort description of a stored object.
type ObjectMetadata struct {
	ContentType string `json:"content_type"`
	Size        string `json:"size"`
	CreatedAt   string `json:"created_at"`
}

// UnknownMetadata returns metadata with every field degraded.
func UnknownMetadata() ObjectMetadata {
	return ObjectMetadata{
		ContentType: MetadataUnknown,
		Size:        MetadataUnknown,
		CreatedAt:   MetadataUnknown,
	}
}

// SignedGrant is a time-boxed, read-only access credential for a single blob.
// It exists only for its TTL inside the signed URL itself and is never
// persisted; the ID is for log correlation only.
type SignedGrant struct {
	ID           string         `json:"id"`
	ResourcePath string         `json:"resource_path"`
	OwnerUID     string         `json:"owner_uid"`
	URL          string         `json:"url"`
	Capability   string         `json:"capability"`
	IssuedAt     time.Time      `json:"issued_at"`
	ExpiresAt    time.Time      `json:"expires_at"`
	Metadata     ObjectMetadata `json:"metadata"`
}

// CapabilityRead is the only capability a grant can carry.
const CapabilityRead = "read"
