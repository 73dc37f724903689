package http

import (
	"net/http"

	"github.com/wayralabs/qosqo/internal/session"
	"github.com/wayralabs/qosqo/pkg/middleware"
)

// UserHandler handles HTTP requests for the signed-in user's profile.
type UserHandler struct {
	sessions *session.Manager
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(sessions *session.Manager) *UserHandler {
	return &UserHandler{sessions: sessions}
}

// GetMe handles GET /api/v1/users/me
//
// Profile lookups never fail the request. When the profile row is missing or
// the lookup errors, data is null and the caller falls back to token claims.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "user not authenticated"},
		})
		return
	}

	profile := h.sessions.FetchProfile(r.Context(), userID)
	writeJSON(w, http.StatusOK, response{Data: profile})
}
