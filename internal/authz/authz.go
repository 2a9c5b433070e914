// Package authz evaluates ordered policy chains over the caller's identity
// and the declared resource owner.
//
// Policies are pure functions: no I/O, no clock, no store access. Each
// endpoint declares its policy list and the gate folds it left to right,
// stopping at the first denial.
package authz

import (
	"github.com/docgate/docgate/internal/apperr"
	"github.com/docgate/docgate/internal/model"
)

// Decision is the outcome of a single policy or of a whole chain.
type Decision struct {
	Allowed bool
	Reason  apperr.Code
}

// Allow is the permitting decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny produces a terminal denial with a reason code.
func Deny(reason apperr.Code) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Err converts a denial into its typed error. Returns nil for allows.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case apperr.Unauthenticated:
		return apperr.New(d.Reason, "authentication required")
	case apperr.EmailUnverified:
		return apperr.New(d.Reason, "verified email required")
	default:
		return apperr.New(d.Reason, "access denied")
	}
}

// Policy inspects the caller identity (nil when anonymous) and the declared
// owner of the targeted resource, and yields a decision.
type Policy func(id *model.Identity, ownerUID string) Decision

// RequireAuthenticated denies anonymous callers.
func RequireAuthenticated(id *model.Identity, _ string) Decision {
	if id == nil {
		return Deny(apperr.Unauthenticated)
	}
	return Allow()
}

// RequireOwnership denies callers whose uid does not match the declared
// resource owner. It runs whenever a request targets another principal's
// resource, by path or by payload field, and an empty owner never matches.
func RequireOwnership(id *model.Identity, ownerUID string) Decision {
	if id == nil {
		return Deny(apperr.Unauthenticated)
	}
	if ownerUID == "" || id.UID != ownerUID {
		return Deny(apperr.Forbidden)
	}
	return Allow()
}

// RequireEmailVerified denies callers without a provider-verified email.
// Used for billing and plan-mutation style actions.
func RequireEmailVerified(id *model.Identity, _ string) Decision {
	if id == nil {
		return Deny(apperr.Unauthenticated)
	}
	if !id.EmailVerified {
		return Deny(apperr.EmailUnverified)
	}
	return Allow()
}

// OptionalAuthenticated never denies; endpoints that personalize but do not
// require login use it as their only policy.
func OptionalAuthenticated(_ *model.Identity, _ string) Decision {
	return Allow()
}

// Evaluate folds the policy chain left to right. The first denial wins and
// later policies are not consulted.
func Evaluate(id *model.Identity, ownerUID string, policies ...Policy) Decision {
	for _, policy := range policies {
		if d := policy(id, ownerUID); !d.Allowed {
			return d
		}
	}
	return Allow()
}
