package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/docgate/docgate/internal/handler/dto"
	"github.com/docgate/docgate/internal/identity"
	"github.com/docgate/docgate/internal/middleware"
	"github.com/docgate/docgate/internal/service"
)

// PlanHandler handles HTTP requests for plan inspection and changes.
type PlanHandler struct {
	svc    *service.DocumentService
	logger *slog.Logger
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(svc *service.DocumentService, logger *slog.Logger) *PlanHandler {
	return &PlanHandler{
		svc:    svc,
		logger: logger,
	}
}

// Get handles GET /plan.
func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := identity.FromContext(r.Context())

	plan, err := h.svc.Plan(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PlanResponse{UserID: plan.UserID, Tier: plan.Tier})
}

// Change handles POST /plan.
func (h *PlanHandler) Change(w http.ResponseWriter, r *http.Request) {
	var req dto.ChangePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := middleware.ValidateTier(req.Tier); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_TIER", err.Error())
		return
	}

	id := identity.FromContext(r.Context())
	plan, err := h.svc.ChangePlan(r.Context(), id, req.Tier)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PlanResponse{UserID: plan.UserID, Tier: plan.Tier})
}
