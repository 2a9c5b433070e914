// Package model defines domain entities for the application.
package model

import "time"

// ServiceKey represents a backoffice service credential used by internal
// collaborators (e.g., the billing system syncing plan tiers).
type ServiceKey struct {
	ID        string     `json:"id"`
	Name      string     `json:"name,omitempty"`
	KeyHash   string     `json:"-"` // Never serialize
	KeyPrefix string     `json:"key_prefix"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsRevoked returns true if the key has been revoked.
func (k *ServiceKey) IsRevoked() bool {
	return k.RevokedAt != nil
}
