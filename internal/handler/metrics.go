package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/docgate/docgate/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "docgate_auth_success_total %d\n", snap.AuthSuccesses)
	writeLabeled(w, "docgate_auth_failure_total", "reason", snap.AuthFailures)
	writeMetric(w, "docgate_auth_cache_hits_total %d\n", snap.AuthCacheHits)
	writeMetric(w, "docgate_auth_cache_misses_total %d\n", snap.AuthCacheMisses)

	writeLabeled(w, "docgate_policy_denied_total", "reason", snap.PolicyDenials)

	writeLabeled(w, "docgate_quota_allowed_total", "class", snap.QuotaAllowed)
	writeLabeled(w, "docgate_quota_denied_total", "class", snap.QuotaDenied)
	writeMetric(w, "docgate_quota_retries_total %d\n", snap.QuotaRetries)
	writeMetric(w, "docgate_quota_check_duration_seconds_count %d\n", snap.QuotaCheckCount)
	writeMetric(w, "docgate_quota_check_duration_seconds_sum %.6f\n", float64(snap.QuotaCheckTotalNs)/1e9)

	writeLabeled(w, "docgate_grants_issued_total", "class", snap.GrantsIssued)
	writeLabeled(w, "docgate_grants_denied_total", "reason", snap.GrantDenials)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// writeLabeled emits one series per label value, in stable order.
func writeLabeled(w http.ResponseWriter, name, label string, counts map[string]uint64) {
	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Strings(values)
	for _, v := range values {
		writeMetric(w, "%s{%s=%q} %d\n", name, label, v, counts[v])
	}
}
