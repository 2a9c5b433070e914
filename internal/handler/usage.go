package handler

import (
	"log/slog"
	"net/http"

	"github.com/docgate/docgate/internal/handler/dto"
	"github.com/docgate/docgate/internal/identity"
	"github.com/docgate/docgate/internal/service"
)

// UsageHandler handles HTTP requests for quota usage reporting.
type UsageHandler struct {
	svc    *service.DocumentService
	logger *slog.Logger
}

// NewUsageHandler creates a new UsageHandler.
func NewUsageHandler(svc *service.DocumentService, logger *slog.Logger) *UsageHandler {
	return &UsageHandler{
		svc:    svc,
		logger: logger,
	}
}

// Get handles GET /usage.
func (h *UsageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := identity.FromContext(r.Context())

	out, err := h.svc.Usage(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UsageResponse{
		Tier:    out.Tier,
		Classes: out.Classes,
	})
}
