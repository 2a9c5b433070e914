package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/docgate/docgate/internal/handler/dto"
	"github.com/docgate/docgate/internal/identity"
	"github.com/docgate/docgate/internal/middleware"
	"github.com/docgate/docgate/internal/model"
	"github.com/docgate/docgate/internal/service"
)

// DocumentHandler handles HTTP requests for document operations.
type DocumentHandler struct {
	svc    *service.DocumentService
	logger *slog.Logger
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(svc *service.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		svc:    svc,
		logger: logger,
	}
}

// Merge handles POST /documents/merge.
func (h *DocumentHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var req dto.MergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := middleware.ValidateDocumentCount(len(req.Sources)); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_SOURCES", err.Error())
		return
	}
	for _, src := range req.Sources {
		if err := middleware.ValidateResourcePath(src); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_PATH", err.Error())
			return
		}
	}

	id := identity.FromContext(r.Context())
	out, err := h.svc.Merge(r.Context(), id, service.MergeInput{SourcePaths: req.Sources})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("merge_accepted",
		"uid", id.UID,
		"sources", len(req.Sources),
		"output", out.OutputPath,
	)

	setQuotaHeader(w, out.Remaining)
	writeJSON(w, http.StatusAccepted, dto.OperationResponse{
		OutputPath: out.OutputPath,
		Remaining:  out.Remaining,
	})
}

// Render handles POST /documents/render.
func (h *DocumentHandler) Render(w http.ResponseWriter, r *http.Request) {
	var req dto.RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := middleware.ValidateResourcePath(req.Source); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PATH", err.Error())
		return
	}
	switch req.Format {
	case "", "pdf", "png":
	default:
		writeError(w, http.StatusBadRequest, "INVALID_FORMAT", "Format must be pdf or png")
		return
	}

	id := identity.FromContext(r.Context())
	out, err := h.svc.Render(r.Context(), id, service.RenderInput{
		SourcePath: req.Source,
		Options:    service.RenderOptions{Format: req.Format},
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("render_accepted",
		"uid", id.UID,
		"source", req.Source,
		"output", out.OutputPath,
	)

	setQuotaHeader(w, out.Remaining)
	writeJSON(w, http.StatusAccepted, dto.OperationResponse{
		OutputPath: out.OutputPath,
		Remaining:  out.Remaining,
	})
}

// setQuotaHeader exposes remaining quota to clients. Unmetered callers
// see the sentinel as-is.
func setQuotaHeader(w http.ResponseWriter, remaining int64) {
	if remaining == model.QuotaUnlimited {
		w.Header().Set("X-Quota-Remaining", "unlimited")
		return
	}
	w.Header().Set("X-Quota-Remaining", strconv.FormatInt(remaining, 10))
}
