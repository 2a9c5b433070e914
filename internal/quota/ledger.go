// Package quota meters usage of privileged operations against per-user,
// plan-dependent limits.
package quota

import (
	"context"
)

// Result is the outcome of a check-and-increment.
// Remaining is model.QuotaUnlimited for unmetered tiers.
type Result struct {
	Allowed   bool  `json:"allowed"`
	Remaining int64 `json:"remaining"`
}

// Ledger atomically checks and consumes quota for a metered operation.
//
// Implementations must guarantee the read-check-write is atomic against the
// backing store: two concurrent requests for the same uid must never both
// pass the check and push the counter past the limit. A denial never mutates
// state.
type Ledger interface {
	CheckAndIncrement(ctx context.Context, uid, resourceClass string, cost int64) (Result, error)
}

// ClassUsage reports consumption for one resource class.
type ClassUsage struct {
	ResourceClass string `json:"resource_class"`
	UsedCount     int64  `json:"used_count"`
	Limit         int64  `json:"limit"`
	Remaining     int64  `json:"remaining"`
}
