package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/docgate/docgate/internal/apperr"
	"github.com/docgate/docgate/internal/model"
)

// Common errors for plan repository operations.
var (
	ErrPlanLimitNotFound = errors.New("plan limit not found")
)

// PlanOf returns the user's current plan. Users without a row are on the
// free tier; first-use creation happens lazily on mutation, not on read.
func (r *Repository) PlanOf(ctx context.Context, uid string) (model.Plan, error) {
	plan := model.Plan{UserID: uid}
	err := r.pool.QueryRow(ctx,
		`SELECT tier, updated_at FROM plans WHERE user_id = $1`,
		uid,
	).Scan(&plan.Tier, &plan.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		plan.Tier = model.TierFree
		return plan, nil
	}
	if err != nil {
		return model.Plan{}, apperr.Wrap(apperr.Unavailable, "plan store unavailable", err)
	}
	return plan, nil
}

// SetPlan upserts the user's plan tier.
func (r *Repository) SetPlan(ctx context.Context, uid, tier string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO plans (user_id, tier, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET tier = EXCLUDED.tier, updated_at = EXCLUDED.updated_at`,
		uid, tier, time.Now().UTC(),
	)
	if err != nil {
		return apperr.Wrap(apperr.Unavailable, "plan store unavailable", err)
	}
	return nil
}

// GetPlanLimit returns the configured limit row for a tier.
func (r *Repository) GetPlanLimit(ctx context.Context, tier string) (model.PlanLimit, error) {
	limit := model.PlanLimit{Tier: tier}
	err := r.pool.QueryRow(ctx,
		`SELECT op_limit, features FROM plan_limits WHERE tier = $1`,
		tier,
	).Scan(&limit.OpLimit, pq.Array(&limit.Features))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.PlanLimit{}, fmt.Errorf("%w: %s", ErrPlanLimitNotFound, tier)
	}
	if err != nil {
		return model.PlanLimit{}, apperr.Wrap(apperr.Unavailable, "plan store unavailable", err)
	}
	return limit, nil
}
