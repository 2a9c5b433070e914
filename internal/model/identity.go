// Package model defines domain entities for the application.
package model

import "time"

// Identity is the provider-attested view of a caller. It is constructed once
// per request by the token verifier and never mutated afterwards; only these
// attested fields may be trusted downstream, never uid/email values found in
// request payloads.
type Identity struct {
	UID           string    `json:"uid"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	IssuedAt      time.Time `json:"issued_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Expired reports whether the identity's credential has already lapsed.
func (id *Identity) Expired(now time.Time) bool {
	return !now.Before(id.ExpiresAt)
}
