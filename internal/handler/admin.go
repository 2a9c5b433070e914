package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docgate/docgate/internal/handler/dto"
	"github.com/docgate/docgate/internal/middleware"
	"github.com/docgate/docgate/internal/service"
)

// AdminHandler serves the internal, service-key authenticated surface
// used by backoffice collaborators such as the billing system.
type AdminHandler struct {
	svc    *service.DocumentService
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc *service.DocumentService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		svc:    svc,
		logger: logger,
	}
}

// SyncPlan handles PUT /internal/v1/users/{uid}/plan.
func (h *AdminHandler) SyncPlan(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	if uid == "" {
		writeError(w, http.StatusBadRequest, "MISSING_UID", "User ID is required")
		return
	}

	var req dto.SyncPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := middleware.ValidateTier(req.Tier); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_TIER", err.Error())
		return
	}

	if err := h.svc.SyncPlan(r.Context(), uid, req.Tier); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	key := middleware.ServiceKeyFromContext(r.Context())
	keyID := ""
	if key != nil {
		keyID = key.ID
	}
	h.logger.Info("plan_sync",
		"uid", uid,
		"tier", req.Tier,
		"service_key_id", keyID,
	)

	writeJSON(w, http.StatusOK, dto.PlanResponse{UserID: uid, Tier: req.Tier})
}
