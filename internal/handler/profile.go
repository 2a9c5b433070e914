package handler

import (
	"net/http"

	"github.com/docgate/docgate/internal/handler/dto"
	"github.com/docgate/docgate/internal/identity"
)

// ProfileHandler echoes the authenticated caller's identity claims.
type ProfileHandler struct{}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{}
}

// Get handles GET /profile. The route uses optional auth, so anonymous
// callers get an empty profile rather than a 401.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := identity.FromContext(r.Context())
	if id == nil {
		writeJSON(w, http.StatusOK, dto.ProfileResponse{Authenticated: false})
		return
	}

	expiresAt := id.ExpiresAt
	writeJSON(w, http.StatusOK, dto.ProfileResponse{
		Authenticated: true,
		UID:           id.UID,
		Email:         id.Email,
		EmailVerified: id.EmailVerified,
		ExpiresAt:     &expiresAt,
	})
}
