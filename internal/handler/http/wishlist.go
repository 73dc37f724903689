package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wayralabs/qosqo/internal/wishlist"
	"github.com/wayralabs/qosqo/pkg/middleware"
	"github.com/wayralabs/qosqo/pkg/validator"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	cache *wishlist.Cache
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(cache *wishlist.Cache) *WishlistHandler {
	return &WishlistHandler{cache: cache}
}

// --- Request DTOs ---

// AddWishlistRequest is the optional JSON request body when saving an experience.
type AddWishlistRequest struct {
	Notes string `json:"notes" validate:"omitempty,max=500"`
}

// --- Response types ---

// WishlistExistsResponse indicates whether an experience is saved.
type WishlistExistsResponse struct {
	Exists bool `json:"exists"`
}

// --- Handlers ---

// List handles GET /api/v1/users/me/wishlist
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "user not authenticated"},
		})
		return
	}

	folders, err := h.cache.Fetch(r.Context(), userID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: folders})
}

// Add handles POST /api/v1/users/me/wishlist/{experienceId}
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "user not authenticated"},
		})
		return
	}

	experienceID := chi.URLParam(r, "experienceId")
	if experienceID == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "experience id is required"},
		})
		return
	}

	var req AddWishlistRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, response{
				Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
			})
			return
		}
		if err := validator.Validate(req); err != nil {
			writeValidationError(w, err)
			return
		}
	}

	folders, err := h.cache.Add(r.Context(), userID, experienceID, req.Notes)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: folders})
}

// Remove handles DELETE /api/v1/users/me/wishlist/{experienceId}
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "user not authenticated"},
		})
		return
	}

	experienceID := chi.URLParam(r, "experienceId")
	if experienceID == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "experience id is required"},
		})
		return
	}

	folders, err := h.cache.Remove(r.Context(), userID, experienceID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: folders})
}

// Exists handles GET /api/v1/users/me/wishlist/{experienceId}
func (h *WishlistHandler) Exists(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "user not authenticated"},
		})
		return
	}

	experienceID := chi.URLParam(r, "experienceId")
	if experienceID == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "experience id is required"},
		})
		return
	}

	writeJSON(w, http.StatusOK, response{
		Data: WishlistExistsResponse{Exists: h.cache.Contains(userID, experienceID)},
	})
}
