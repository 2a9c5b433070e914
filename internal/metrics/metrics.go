// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Authentication metrics
	IncAuthSuccess()
	IncAuthFailure(reason string) // reason: apperr code, e.g. "UNAUTHENTICATED"
	IncAuthCacheHit()
	IncAuthCacheMiss()

	// Authorization metrics
	IncPolicyDenied(reason string)

	// Quota metrics
	IncQuotaAllowed(class string)
	IncQuotaDenied(class string)
	IncQuotaRetry()
	ObserveQuotaCheckDuration(duration time.Duration)

	// Grant metrics
	IncGrantIssued(class string)
	IncGrantDenied(reason string)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
