// Package model defines domain entities for the application.
package model

import (
	"slices"
	"time"
)

// Plan tier constants.
const (
	TierFree = "free"
	TierPro  = "pro"
)

// ValidTiers contains all recognized plan tiers.
var ValidTiers = []string{TierFree, TierPro}

// IsValidTier reports whether tier is a recognized plan tier.
func IsValidTier(tier string) bool {
	return slices.Contains(ValidTiers, tier)
}

// Resource class constants for metered operations.
const (
	ClassMerged   = "merged"
	ClassRendered = "rendered"
)

// ValidResourceClasses contains all metered resource classes.
var ValidResourceClasses = []string{ClassMerged, ClassRendered}

// IsValidResourceClass reports whether class is a recognized resource class.
func IsValidResourceClass(class string) bool {
	return slices.Contains(ValidResourceClasses, class)
}

// QuotaUnlimited is the sentinel "remaining" value reported for callers whose
// plan tier disables metering.
const QuotaUnlimited int64 = -1

// QuotaRecord is the durable usage counter for a (user, resource class) pair.
// UsedCount only ever grows; there is no reset window.
type QuotaRecord struct {
	UserID        string    `json:"user_id"`
	ResourceClass string    `json:"resource_class"`
	UsedCount     int64     `json:"used_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PlanLimit describes what a plan tier allows per resource class.
// OpLimit of zero means the tier is not metered.
type PlanLimit struct {
	Tier     string   `json:"tier"`
	OpLimit  int64    `json:"op_limit"`
	Features []string `json:"features,omitempty"`
}

// Unlimited reports whether the tier disables metering entirely.
func (p PlanLimit) Unlimited() bool {
	return p.Tier == TierPro || p.OpLimit == 0
}

// Plan holds a user's current plan tier.
type Plan struct {
	UserID    string    `json:"user_id"`
	Tier      string    `json:"tier"`
	UpdatedAt time.Time `json:"updated_at"`
}
