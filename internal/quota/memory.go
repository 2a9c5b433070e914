package quota

import (
	"context"
	"sort"
	"sync"

	"github.com/docgate/docgate/internal/apperr"
	"github.com/docgate/docgate/internal/model"
)

// DefaultFreeLimit is the per-class operation limit applied to the free tier
// when no explicit limit is configured.
const DefaultFreeLimit int64 = 20

// MemoryLedger is an in-memory Ledger with the same semantics as the
// Postgres-backed one. It serves tests and single-node dev mode; it is never
// a second metering surface next to the durable ledger in production.
type MemoryLedger struct {
	mu     sync.Mutex
	used   map[string]map[string]int64 // uid -> class -> count
	tiers  map[string]string           // uid -> tier
	limits map[string]int64            // tier -> per-class limit
}

// NewMemoryLedger builds a ledger with the given per-tier limits.
// Missing tiers fall back to DefaultFreeLimit.
func NewMemoryLedger(limits map[string]int64) *MemoryLedger {
	if limits == nil {
		limits = map[string]int64{}
	}
	return &MemoryLedger{
		used:   make(map[string]map[string]int64),
		tiers:  make(map[string]string),
		limits: limits,
	}
}

func (l *MemoryLedger) limitFor(tier string) int64 {
	if v, ok := l.limits[tier]; ok {
		return v
	}
	return DefaultFreeLimit
}

// CheckAndIncrement implements Ledger. Pro-tier increments are recorded for
// observability but never block.
func (l *MemoryLedger) CheckAndIncrement(ctx context.Context, uid, resourceClass string, cost int64) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, apperr.Wrap(apperr.Unavailable, "quota check aborted", err)
	}
	if uid == "" || resourceClass == "" {
		return Result{}, apperr.New(apperr.Internal, "quota check without uid or resource class")
	}
	if cost < 1 {
		return Result{}, apperr.New(apperr.Internal, "quota cost must be positive")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	counts, ok := l.used[uid]
	if !ok {
		counts = make(map[string]int64)
		l.used[uid] = counts
	}

	tier := l.tiers[uid]
	if tier == "" {
		tier = model.TierFree
	}

	if tier == model.TierPro {
		counts[resourceClass] += cost
		return Result{Allowed: true, Remaining: model.QuotaUnlimited}, nil
	}

	limit := l.limitFor(tier)
	used := counts[resourceClass]
	if used+cost > limit {
		remaining := limit - used
		if remaining < 0 {
			remaining = 0
		}
		return Result{Allowed: false, Remaining: remaining}, nil
	}

	counts[resourceClass] = used + cost
	return Result{Allowed: true, Remaining: limit - used - cost}, nil
}

// PlanOf returns the user's current plan; absent users are on the free tier.
func (l *MemoryLedger) PlanOf(ctx context.Context, uid string) (model.Plan, error) {
	if err := ctx.Err(); err != nil {
		return model.Plan{}, apperr.Wrap(apperr.Unavailable, "plan lookup aborted", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tier := l.tiers[uid]
	if tier == "" {
		tier = model.TierFree
	}
	return model.Plan{UserID: uid, Tier: tier}, nil
}

// SetPlan stores the user's plan tier.
func (l *MemoryLedger) SetPlan(ctx context.Context, uid, tier string) error {
	if err := ctx.Err(); err != nil {
		return apperr.Wrap(apperr.Unavailable, "plan update aborted", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.tiers[uid] = tier
	return nil
}

// Usage reports per-class consumption for the user, covering every known
// resource class even before first use.
func (l *MemoryLedger) Usage(ctx context.Context, uid string) ([]ClassUsage, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Unavailable, "usage lookup aborted", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tier := l.tiers[uid]
	if tier == "" {
		tier = model.TierFree
	}

	classes := append([]string(nil), model.ValidResourceClasses...)
	for class := range l.used[uid] {
		if !model.IsValidResourceClass(class) {
			classes = append(classes, class)
		}
	}
	sort.Strings(classes)

	out := make([]ClassUsage, 0, len(classes))
	for _, class := range classes {
		used := l.used[uid][class]
		usage := ClassUsage{ResourceClass: class, UsedCount: used}
		if tier == model.TierPro {
			usage.Limit = model.QuotaUnlimited
			usage.Remaining = model.QuotaUnlimited
		} else {
			limit := l.limitFor(tier)
			usage.Limit = limit
			usage.Remaining = limit - used
			if usage.Remaining < 0 {
				usage.Remaining = 0
			}
		}
		out = append(out, usage)
	}
	return out, nil
}
