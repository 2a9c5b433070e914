package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	AuthSuccesses        uint64
	AuthFailures         map[string]uint64
	AuthCacheHits        uint64
	AuthCacheMisses      uint64
	PolicyDenials        map[string]uint64
	QuotaAllowed         map[string]uint64
	QuotaDenied          map[string]uint64
	QuotaRetries         uint64
	QuotaCheckCount      uint64
	QuotaCheckTotalNs    int64
	GrantsIssued         map[string]uint64
	GrantDenials         map[string]uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	authSuccesses     uint64
	authCacheHits     uint64
	authCacheMisses   uint64
	quotaRetries      uint64
	quotaCheckCount   uint64
	quotaCheckTotalNs int64

	mu            sync.Mutex
	authFailures  map[string]uint64
	policyDenials map[string]uint64
	quotaAllowed  map[string]uint64
	quotaDenied   map[string]uint64
	grantsIssued  map[string]uint64
	grantDenials  map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		authFailures:  make(map[string]uint64),
		policyDenials: make(map[string]uint64),
		quotaAllowed:  make(map[string]uint64),
		quotaDenied:   make(map[string]uint64),
		grantsIssued:  make(map[string]uint64),
		grantDenials:  make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		AuthSuccesses:     atomic.LoadUint64(&m.authSuccesses),
		AuthFailures:      copyCounts(m.authFailures),
		AuthCacheHits:     atomic.LoadUint64(&m.authCacheHits),
		AuthCacheMisses:   atomic.LoadUint64(&m.authCacheMisses),
		PolicyDenials:     copyCounts(m.policyDenials),
		QuotaAllowed:      copyCounts(m.quotaAllowed),
		QuotaDenied:       copyCounts(m.quotaDenied),
		QuotaRetries:      atomic.LoadUint64(&m.quotaRetries),
		QuotaCheckCount:   atomic.LoadUint64(&m.quotaCheckCount),
		QuotaCheckTotalNs: atomic.LoadInt64(&m.quotaCheckTotalNs),
		GrantsIssued:      copyCounts(m.grantsIssued),
		GrantDenials:      copyCounts(m.grantDenials),
	}
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// IncAuthSuccess increments the successful authentication counter.
func (m *InMemoryRecorder) IncAuthSuccess() {
	atomic.AddUint64(&m.authSuccesses, 1)
}

// IncAuthFailure increments the failure counter for the given reason.
func (m *InMemoryRecorder) IncAuthFailure(reason string) {
	m.mu.Lock()
	m.authFailures[reason]++
	m.mu.Unlock()
}

// IncAuthCacheHit increments the identity cache hit counter.
func (m *InMemoryRecorder) IncAuthCacheHit() {
	atomic.AddUint64(&m.authCacheHits, 1)
}

// IncAuthCacheMiss increments the identity cache miss counter.
func (m *InMemoryRecorder) IncAuthCacheMiss() {
	atomic.AddUint64(&m.authCacheMisses, 1)
}

// IncPolicyDenied increments the policy denial counter for the given reason.
func (m *InMemoryRecorder) IncPolicyDenied(reason string) {
	m.mu.Lock()
	m.policyDenials[reason]++
	m.mu.Unlock()
}

// IncQuotaAllowed increments the allowed counter for a resource class.
func (m *InMemoryRecorder) IncQuotaAllowed(class string) {
	m.mu.Lock()
	m.quotaAllowed[class]++
	m.mu.Unlock()
}

// IncQuotaDenied increments the denied counter for a resource class.
func (m *InMemoryRecorder) IncQuotaDenied(class string) {
	m.mu.Lock()
	m.quotaDenied[class]++
	m.mu.Unlock()
}

// IncQuotaRetry increments the counter-contention retry counter.
func (m *InMemoryRecorder) IncQuotaRetry() {
	atomic.AddUint64(&m.quotaRetries, 1)
}

// ObserveQuotaCheckDuration records a quota check duration.
func (m *InMemoryRecorder) ObserveQuotaCheckDuration(duration time.Duration) {
	atomic.AddUint64(&m.quotaCheckCount, 1)
	atomic.AddInt64(&m.quotaCheckTotalNs, duration.Nanoseconds())
}

// IncGrantIssued increments the issued-grant counter for a resource class.
func (m *InMemoryRecorder) IncGrantIssued(class string) {
	m.mu.Lock()
	m.grantsIssued[class]++
	m.mu.Unlock()
}

// IncGrantDenied increments the denied-grant counter for the given reason.
func (m *InMemoryRecorder) IncGrantDenied(reason string) {
	m.mu.Lock()
	m.grantDenials[reason]++
	m.mu.Unlock()
}
