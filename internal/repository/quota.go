package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/docgate/docgate/internal/apperr"
	"github.com/docgate/docgate/internal/model"
	"github.com/docgate/docgate/internal/quota"
)

// casAttempts bounds the optimistic increment: one fresh-read retry after a
// lost race, then the caller sees Unavailable.
const casAttempts = 2

// CheckAndIncrement implements quota.Ledger against Postgres.
//
// Free-tier increments use a compare-and-set on used_count so two concurrent
// requests can never both pass the limit check: the loser's UPDATE matches
// zero rows and re-reads. The increment is a single statement, so request
// cancellation can never leave it half-applied.
func (r *Repository) CheckAndIncrement(ctx context.Context, uid, resourceClass string, cost int64) (quota.Result, error) {
	if uid == "" || resourceClass == "" {
		return quota.Result{}, apperr.New(apperr.Internal, "quota check without uid or resource class")
	}
	if cost < 1 {
		return quota.Result{}, apperr.New(apperr.Internal, "quota cost must be positive")
	}

	limit, err := r.limitForUser(ctx, uid)
	if err != nil {
		return quota.Result{}, err
	}

	// Unmetered tier: record the increment for observability, never block.
	if limit.Unlimited() {
		if err := r.recordUnmetered(ctx, uid, resourceClass, cost); err != nil {
			return quota.Result{}, err
		}
		return quota.Result{Allowed: true, Remaining: model.QuotaUnlimited}, nil
	}

	if err := r.ensureQuotaRecord(ctx, uid, resourceClass); err != nil {
		return quota.Result{}, err
	}

	for attempt := 0; attempt < casAttempts; attempt++ {
		var used int64
		err := r.pool.QueryRow(ctx,
			`SELECT used_count FROM quota_records WHERE user_id = $1 AND resource_class = $2`,
			uid, resourceClass,
		).Scan(&used)
		if err != nil {
			return quota.Result{}, apperr.Wrap(apperr.Unavailable, "quota store unavailable", err)
		}

		if used+cost > limit.OpLimit {
			remaining := limit.OpLimit - used
			if remaining < 0 {
				remaining = 0
			}
			return quota.Result{Allowed: false, Remaining: remaining}, nil
		}

		tag, err := r.pool.Exec(ctx,
			`UPDATE quota_records
			 SET used_count = used_count + $3, updated_at = NOW()
			 WHERE user_id = $1 AND resource_class = $2 AND used_count = $4`,
			uid, resourceClass, cost, used,
		)
		if err != nil {
			return quota.Result{}, apperr.Wrap(apperr.Unavailable, "quota store unavailable", err)
		}
		if tag.RowsAffected() == 1 {
			return quota.Result{Allowed: true, Remaining: limit.OpLimit - used - cost}, nil
		}
		// Lost the race: another request moved the counter. Retry once with
		// the freshly re-read value.
		r.metrics.IncQuotaRetry()
	}

	return quota.Result{}, apperr.New(apperr.Unavailable, "quota counter contention")
}

// recordUnmetered bumps the counter unconditionally.
func (r *Repository) recordUnmetered(ctx context.Context, uid, resourceClass string, cost int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO quota_records (user_id, resource_class, used_count, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (user_id, resource_class)
		 DO UPDATE SET used_count = quota_records.used_count + EXCLUDED.used_count, updated_at = NOW()`,
		uid, resourceClass, cost,
	)
	if err != nil {
		return apperr.Wrap(apperr.Unavailable, "quota store unavailable", err)
	}
	return nil
}

// ensureQuotaRecord creates the zero row on first use for a (uid, class) pair.
func (r *Repository) ensureQuotaRecord(ctx context.Context, uid, resourceClass string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO quota_records (user_id, resource_class, used_count, updated_at)
		 VALUES ($1, $2, 0, NOW())
		 ON CONFLICT (user_id, resource_class) DO NOTHING`,
		uid, resourceClass,
	)
	if err != nil {
		return apperr.Wrap(apperr.Unavailable, "quota store unavailable", err)
	}
	return nil
}

// limitForUser resolves the caller's plan tier to its configured limit.
func (r *Repository) limitForUser(ctx context.Context, uid string) (model.PlanLimit, error) {
	plan, err := r.PlanOf(ctx, uid)
	if err != nil {
		return model.PlanLimit{}, err
	}
	return r.GetPlanLimit(ctx, plan.Tier)
}

// GetQuotaRecord returns the current counter for a (uid, class) pair.
// A missing row reads as zero usage.
func (r *Repository) GetQuotaRecord(ctx context.Context, uid, resourceClass string) (*model.QuotaRecord, error) {
	rec := &model.QuotaRecord{UserID: uid, ResourceClass: resourceClass}
	err := r.pool.QueryRow(ctx,
		`SELECT used_count, updated_at FROM quota_records WHERE user_id = $1 AND resource_class = $2`,
		uid, resourceClass,
	).Scan(&rec.UsedCount, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return rec, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quota record: %w", err)
	}
	return rec, nil
}

// Usage reports per-class consumption for the user, including classes not
// yet used.
func (r *Repository) Usage(ctx context.Context, uid string) ([]quota.ClassUsage, error) {
	limit, err := r.limitForUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	rows, err := r.pool.Query(ctx,
		`SELECT resource_class, used_count FROM quota_records WHERE user_id = $1 ORDER BY resource_class`,
		uid,
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unavailable, "quota store unavailable", err)
	}
	defer rows.Close()
	for rows.Next() {
		var class string
		var used int64
		if err := rows.Scan(&class, &used); err != nil {
			return nil, fmt.Errorf("failed to scan quota record: %w", err)
		}
		counts[class] = used
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quota records: %w", err)
	}

	classes := append([]string(nil), model.ValidResourceClasses...)
	for class := range counts {
		if !model.IsValidResourceClass(class) {
			classes = append(classes, class)
		}
	}

	out := make([]quota.ClassUsage, 0, len(classes))
	for _, class := range classes {
		usage := quota.ClassUsage{ResourceClass: class, UsedCount: counts[class]}
		if limit.Unlimited() {
			usage.Limit = model.QuotaUnlimited
			usage.Remaining = model.QuotaUnlimited
		} else {
			usage.Limit = limit.OpLimit
			usage.Remaining = limit.OpLimit - usage.UsedCount
			if usage.Remaining < 0 {
				usage.Remaining = 0
			}
		}
		out = append(out, usage)
	}
	return out, nil
}
