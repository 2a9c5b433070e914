package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/docgate/docgate/internal/handler/dto"
	"github.com/docgate/docgate/internal/identity"
	"github.com/docgate/docgate/internal/middleware"
	"github.com/docgate/docgate/internal/service"
)

// GrantHandler handles HTTP requests for signed download grants.
type GrantHandler struct {
	svc    *service.DocumentService
	logger *slog.Logger
}

// NewGrantHandler creates a new GrantHandler.
func NewGrantHandler(svc *service.DocumentService, logger *slog.Logger) *GrantHandler {
	return &GrantHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /grants.
func (h *GrantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.GrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := middleware.ValidateResourcePath(req.Path); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PATH", err.Error())
		return
	}
	if err := middleware.ValidateTTLSeconds(req.TTLSeconds); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_TTL", err.Error())
		return
	}

	id := identity.FromContext(r.Context())
	ttl := time.Duration(req.TTLSeconds) * time.Second

	g, err := h.svc.IssueGrant(r.Context(), id, req.Path, ttl)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("grant_issued",
		"grant_id", g.ID,
		"uid", g.OwnerUID,
		"path", g.ResourcePath,
		"expires_at", g.ExpiresAt,
	)

	writeJSON(w, http.StatusCreated, dto.ToGrantResponse(g))
}
