package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestInMemoryRecorder_Counters(t *testing.T) {
	t.Parallel()

	rec := NewInMemory()

	rec.IncAuthSuccess()
	rec.IncAuthSuccess()
	rec.IncAuthFailure("UNAUTHENTICATED")
	rec.IncAuthCacheHit()
	rec.IncAuthCacheMiss()
	rec.IncPolicyDenied("FORBIDDEN")
	rec.IncPolicyDenied("FORBIDDEN")
	rec.IncPolicyDenied("EMAIL_UNVERIFIED")
	rec.IncQuotaAllowed("merged")
	rec.IncQuotaDenied("merged")
	rec.IncQuotaRetry()
	rec.ObserveQuotaCheckDuration(3 * time.Millisecond)
	rec.IncGrantIssued("rendered")
	rec.IncGrantDenied("NOT_FOUND")

	snap := rec.Snapshot()

	if snap.AuthSuccesses != 2 {
		t.Errorf("AuthSuccesses = %d, want 2", snap.AuthSuccesses)
	}
	if snap.AuthFailures["UNAUTHENTICATED"] != 1 {
		t.Errorf("AuthFailures = %v", snap.AuthFailures)
	}
	if snap.AuthCacheHits != 1 || snap.AuthCacheMisses != 1 {
		t.Errorf("cache hits/misses = %d/%d, want 1/1", snap.AuthCacheHits, snap.AuthCacheMisses)
	}
	if snap.PolicyDenials["FORBIDDEN"] != 2 || snap.PolicyDenials["EMAIL_UNVERIFIED"] != 1 {
		t.Errorf("PolicyDenials = %v", snap.PolicyDenials)
	}
	if snap.QuotaAllowed["merged"] != 1 || snap.QuotaDenied["merged"] != 1 {
		t.Errorf("QuotaAllowed/Denied = %v / %v", snap.QuotaAllowed, snap.QuotaDenied)
	}
	if snap.QuotaRetries != 1 {
		t.Errorf("QuotaRetries = %d, want 1", snap.QuotaRetries)
	}
	if snap.QuotaCheckCount != 1 || snap.QuotaCheckTotalNs != (3*time.Millisecond).Nanoseconds() {
		t.Errorf("quota check count/total = %d/%d", snap.QuotaCheckCount, snap.QuotaCheckTotalNs)
	}
	if snap.GrantsIssued["rendered"] != 1 {
		t.Errorf("GrantsIssued = %v", snap.GrantsIssued)
	}
	if snap.GrantDenials["NOT_FOUND"] != 1 {
		t.Errorf("GrantDenials = %v", snap.GrantDenials)
	}
}

func TestInMemoryRecorder_ConcurrentSafe(t *testing.T) {
	t.Parallel()

	rec := NewInMemory()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				rec.IncAuthSuccess()
				rec.IncQuotaAllowed("merged")
				rec.IncPolicyDenied("FORBIDDEN")
			}
		}()
	}
	wg.Wait()

	snap := rec.Snapshot()
	if snap.AuthSuccesses != 1000 {
		t.Errorf("AuthSuccesses = %d, want 1000", snap.AuthSuccesses)
	}
	if snap.QuotaAllowed["merged"] != 1000 {
		t.Errorf("QuotaAllowed = %d, want 1000", snap.QuotaAllowed["merged"])
	}
	if snap.PolicyDenials["FORBIDDEN"] != 1000 {
		t.Errorf("PolicyDenials = %d, want 1000", snap.PolicyDenials["FORBIDDEN"])
	}
}

func TestSnapshot_IsCopy(t *testing.T) {
	t.Parallel()

	rec := NewInMemory()
	rec.IncQuotaAllowed("merged")

	snap := rec.Snapshot()
	snap.QuotaAllowed["merged"] = 99

	if got := rec.Snapshot().QuotaAllowed["merged"]; got != 1 {
		t.Errorf("snapshot mutation leaked into recorder: %d", got)
	}
}
