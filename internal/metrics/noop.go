package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncAuthSuccess is a no-op.
func (n *NoopRecorder) IncAuthSuccess() {}

// IncAuthFailure is a no-op.
func (n *NoopRecorder) IncAuthFailure(reason string) {}

// IncAuthCacheHit is a no-op.
func (n *NoopRecorder) IncAuthCacheHit() {}

// IncAuthCacheMiss is a no-op.
func (n *NoopRecorder) IncAuthCacheMiss() {}

// IncPolicyDenied is a no-op.
func (n *NoopRecorder) IncPolicyDenied(reason string) {}

// IncQuotaAllowed is a no-op.
func (n *NoopRecorder) IncQuotaAllowed(class string) {}

// IncQuotaDenied is a no-op.
func (n *NoopRecorder) IncQuotaDenied(class string) {}

// IncQuotaRetry is a no-op.
func (n *NoopRecorder) IncQuotaRetry() {}

// ObserveQuotaCheckDuration is a no-op.
func (n *NoopRecorder) ObserveQuotaCheckDuration(duration time.Duration) {}

// IncGrantIssued is a no-op.
func (n *NoopRecorder) IncGrantIssued(class string) {}

// IncGrantDenied is a no-op.
func (n *NoopRecorder) IncGrantDenied(reason string) {}
