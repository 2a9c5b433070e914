// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/docgate/docgate/internal/model"
	"github.com/docgate/docgate/internal/quota"
)

// MergeRequest represents the request body for merging documents.
type MergeRequest struct {
	Sources []string `json:"sources"`
}

// RenderRequest represents the request body for rendering a document.
type RenderRequest struct {
	Source string `json:"source"`
	Format string `json:"format,omitempty"`
}

// OperationResponse represents the outcome of a metered document operation.
// Remaining is -1 when the caller's tier is not metered.
type OperationResponse struct {
	OutputPath string `json:"output_path"`
	Remaining  int64  `json:"remaining"`
}

// GrantRequest represents the request body for issuing a download grant.
type GrantRequest struct {
	Path       string `json:"path"`
	TTLSeconds int64  `json:"ttl_seconds,omitempty"`
}

// GrantResponse represents an issued signed download grant.
type GrantResponse struct {
	ID           string               `json:"id"`
	URL          string               `json:"url"`
	ResourcePath string               `json:"resource_path"`
	Capability   string               `json:"capability"`
	IssuedAt     time.Time            `json:"issued_at"`
	ExpiresAt    time.Time            `json:"expires_at"`
	Metadata     model.ObjectMetadata `json:"metadata"`
}

// ToGrantResponse converts a signed grant to its API shape.
func ToGrantResponse(g *model.SignedGrant) GrantResponse {
	return GrantResponse{
		ID:           g.ID,
		URL:          g.URL,
		ResourcePath: g.ResourcePath,
		Capability:   g.Capability,
		IssuedAt:     g.IssuedAt,
		ExpiresAt:    g.ExpiresAt,
		Metadata:     g.Metadata,
	}
}

// UsageResponse reports the caller's plan tier and per-class consumption.
type UsageResponse struct {
	Tier    string             `json:"tier"`
	Classes []quota.ClassUsage `json:"classes"`
}

// PlanResponse represents the caller's current plan.
type PlanResponse struct {
	UserID string `json:"user_id"`
	Tier   string `json:"tier"`
}

// ChangePlanRequest represents the request body for a plan change.
type ChangePlanRequest struct {
	Tier string `json:"tier"`
}

// SyncPlanRequest represents the internal plan-sync request body.
type SyncPlanRequest struct {
	Tier string `json:"tier"`
}

// ProfileResponse echoes the caller's identity claims. Anonymous callers
// get Authenticated=false and zero-valued claims.
type ProfileResponse struct {
	Authenticated bool       `json:"authenticated"`
	UID           string     `json:"uid,omitempty"`
	Email         string     `json:"email,omitempty"`
	EmailVerified bool       `json:"email_verified,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}
