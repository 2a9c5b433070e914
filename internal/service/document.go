// Package service provides business logic for the application.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/docgate/docgate/internal/apperr"
	"github.com/docgate/docgate/internal/authz"
	"github.com/docgate/docgate/internal/grant"
	"github.com/docgate/docgate/internal/metrics"
	"github.com/docgate/docgate/internal/model"
	"github.com/docgate/docgate/internal/quota"
)

// QuotaStore is the persistence surface the document service needs:
// the atomic usage ledger plus plan bookkeeping.
type QuotaStore interface {
	quota.Ledger
	PlanOf(ctx context.Context, uid string) (model.Plan, error)
	SetPlan(ctx context.Context, uid, tier string) error
	Usage(ctx context.Context, uid string) ([]quota.ClassUsage, error)
}

// DocumentService gates document operations: it evaluates the policy
// chain, consumes quota and only then hands work to the processor.
type DocumentService struct {
	store     QuotaStore
	processor Processor
	issuer    *grant.Issuer
	logger    *slog.Logger
	metrics   metrics.Recorder
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(store QuotaStore, processor Processor, issuer *grant.Issuer, logger *slog.Logger, recorder metrics.Recorder) *DocumentService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &DocumentService{
		store:     store,
		processor: processor,
		issuer:    issuer,
		logger:    logger,
		metrics:   recorder,
	}
}

// MergeInput defines input for merging documents.
type MergeInput struct {
	SourcePaths []string
}

// OperationOutput is the outcome of a metered document operation.
type OperationOutput struct {
	OutputPath string
	Remaining  int64
}

// Merge combines the caller's source documents into one. The operation
// is metered against the "merged" class; one merge costs one unit
// regardless of how many sources it combines.
func (s *DocumentService) Merge(ctx context.Context, id *model.Identity, input MergeInput) (*OperationOutput, error) {
	if len(input.SourcePaths) == 0 {
		return nil, apperr.New(apperr.NotFound, "no source documents given")
	}
	if err := s.authorizeSources(id, input.SourcePaths); err != nil {
		return nil, err
	}

	result, err := s.consumeQuota(ctx, id.UID, model.ClassMerged)
	if err != nil {
		return nil, err
	}

	outputPath, err := s.processor.Merge(ctx, id.UID, input.SourcePaths)
	if err != nil {
		return nil, classify("merge failed", err)
	}

	s.logger.Info("documents merged",
		slog.String("uid", id.UID),
		slog.Int("sources", len(input.SourcePaths)),
		slog.String("output", outputPath),
		slog.Int64("remaining", result.Remaining),
	)

	return &OperationOutput{OutputPath: outputPath, Remaining: result.Remaining}, nil
}

// RenderInput defines input for rendering a document.
type RenderInput struct {
	SourcePath string
	Options    RenderOptions
}

// Render produces a rendition of one of the caller's documents.
// Metered against the "rendered" class.
func (s *DocumentService) Render(ctx context.Context, id *model.Identity, input RenderInput) (*OperationOutput, error) {
	if err := s.authorizeSources(id, []string{input.SourcePath}); err != nil {
		return nil, err
	}

	result, err := s.consumeQuota(ctx, id.UID, model.ClassRendered)
	if err != nil {
		return nil, err
	}

	outputPath, err := s.processor.Render(ctx, id.UID, input.SourcePath, input.Options)
	if err != nil {
		return nil, classify("render failed", err)
	}

	s.logger.Info("document rendered",
		slog.String("uid", id.UID),
		slog.String("source", input.SourcePath),
		slog.String("output", outputPath),
		slog.Int64("remaining", result.Remaining),
	)

	return &OperationOutput{OutputPath: outputPath, Remaining: result.Remaining}, nil
}

// IssueGrant issues a short-lived signed download grant for one of the
// caller's stored objects.
func (s *DocumentService) IssueGrant(ctx context.Context, id *model.Identity, resourcePath string, ttl time.Duration) (*model.SignedGrant, error) {
	g, err := s.issuer.Issue(ctx, id, resourcePath, ttl)
	if err != nil {
		s.metrics.IncGrantDenied(string(apperr.CodeOf(err)))
		return nil, err
	}

	if claim, ok := model.ParseResourcePath(g.ResourcePath); ok {
		s.metrics.IncGrantIssued(claim.ResourceClass)
	}
	return g, nil
}

// UsageOutput reports the caller's plan tier and per-class consumption.
type UsageOutput struct {
	Tier    string
	Classes []quota.ClassUsage
}

// Usage reports the caller's lifetime consumption per resource class.
func (s *DocumentService) Usage(ctx context.Context, id *model.Identity) (*UsageOutput, error) {
	if err := authz.Evaluate(id, "", authz.RequireAuthenticated).Err(); err != nil {
		return nil, err
	}

	plan, err := s.store.PlanOf(ctx, id.UID)
	if err != nil {
		return nil, classify("plan lookup failed", err)
	}
	classes, err := s.store.Usage(ctx, id.UID)
	if err != nil {
		return nil, classify("usage lookup failed", err)
	}

	return &UsageOutput{Tier: plan.Tier, Classes: classes}, nil
}

// Plan returns the caller's current plan tier.
func (s *DocumentService) Plan(ctx context.Context, id *model.Identity) (model.Plan, error) {
	if err := authz.Evaluate(id, "", authz.RequireAuthenticated).Err(); err != nil {
		return model.Plan{}, err
	}

	plan, err := s.store.PlanOf(ctx, id.UID)
	if err != nil {
		return model.Plan{}, classify("plan lookup failed", err)
	}
	return plan, nil
}

// ChangePlan switches the caller's own plan tier. Requires a verified
// email since this is a billing-adjacent action.
func (s *DocumentService) ChangePlan(ctx context.Context, id *model.Identity, tier string) (model.Plan, error) {
	decision := authz.Evaluate(id, ownerOf(id),
		authz.RequireAuthenticated,
		authz.RequireEmailVerified,
	)
	if !decision.Allowed {
		s.metrics.IncPolicyDenied(string(decision.Reason))
		return model.Plan{}, decision.Err()
	}

	if !model.IsValidTier(tier) {
		return model.Plan{}, apperr.New(apperr.NotFound, "unknown plan tier")
	}

	if err := s.store.SetPlan(ctx, id.UID, tier); err != nil {
		return model.Plan{}, classify("plan change failed", err)
	}

	s.logger.Info("plan changed",
		slog.String("uid", id.UID),
		slog.String("tier", tier),
	)

	return s.store.PlanOf(ctx, id.UID)
}

// SyncPlan sets a user's plan tier on behalf of an internal
// collaborator. Caller authentication happens upstream with a service
// key; no user policy chain applies.
func (s *DocumentService) SyncPlan(ctx context.Context, uid, tier string) error {
	if uid == "" {
		return apperr.New(apperr.NotFound, "unknown user")
	}
	if !model.IsValidTier(tier) {
		return apperr.New(apperr.NotFound, "unknown plan tier")
	}

	if err := s.store.SetPlan(ctx, uid, tier); err != nil {
		return classify("plan sync failed", err)
	}

	s.logger.Info("plan synced",
		slog.String("uid", uid),
		slog.String("tier", tier),
	)
	return nil
}

// authorizeSources runs the document-operation policy chain against
// every source path. The first denial wins.
func (s *DocumentService) authorizeSources(id *model.Identity, sources []string) error {
	for _, path := range sources {
		claim, ok := model.ParseResourcePath(path)
		owner := ""
		if ok {
			owner = claim.OwnerUID
		}
		decision := authz.Evaluate(id, owner,
			authz.RequireAuthenticated,
			authz.RequireOwnership,
		)
		if !decision.Allowed {
			s.metrics.IncPolicyDenied(string(decision.Reason))
			return decision.Err()
		}
	}
	return nil
}

// consumeQuota runs the metered check-and-increment and maps a denial
// to its typed error. Denials never mutate the ledger.
func (s *DocumentService) consumeQuota(ctx context.Context, uid, class string) (quota.Result, error) {
	start := time.Now()
	result, err := s.store.CheckAndIncrement(ctx, uid, class, 1)
	s.metrics.ObserveQuotaCheckDuration(time.Since(start))
	if err != nil {
		return quota.Result{}, err
	}
	if !result.Allowed {
		s.metrics.IncQuotaDenied(class)
		return quota.Result{}, apperr.New(apperr.QuotaExceeded, "operation quota exhausted")
	}

	s.metrics.IncQuotaAllowed(class)
	return result, nil
}

func ownerOf(id *model.Identity) string {
	if id == nil {
		return ""
	}
	return id.UID
}

// classify keeps already-coded failures intact. Store outages and timeouts
// arrive as Unavailable and must surface that way; only genuinely uncoded
// errors become Internal here.
func classify(message string, err error) error {
	if apperr.CodeOf(err) != apperr.Internal {
		return err
	}
	return apperr.Wrap(apperr.Internal, message, err)
}
