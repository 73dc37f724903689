package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wayralabs/qosqo/internal/service"
	"github.com/wayralabs/qosqo/pkg/validator"
)

// AdminHandler handles HTTP requests for the admin directory endpoints.
type AdminHandler struct {
	service *service.ExperienceService
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(svc *service.ExperienceService) *AdminHandler {
	return &AdminHandler{service: svc}
}

// --- Request DTOs ---

// CreateExperienceRequest is the JSON request body for creating an experience.
type CreateExperienceRequest struct {
	Title           string  `json:"title" validate:"required,min=1,max=200"`
	Description     string  `json:"description" validate:"omitempty,max=5000"`
	CategorySlug    string  `json:"category_slug" validate:"required"`
	Price           float64 `json:"price" validate:"gte=0"`
	Currency        string  `json:"currency" validate:"omitempty,len=3"`
	ImageURL        string  `json:"image_url" validate:"omitempty,url,max=1000"`
	Location        string  `json:"location" validate:"omitempty,max=300"`
	Duration        string  `json:"duration" validate:"omitempty,max=100"`
	ContactPhone    string  `json:"contact_phone" validate:"omitempty,max=30"`
	ContactWhatsapp string  `json:"contact_whatsapp" validate:"omitempty,max=30"`
	ContactEmail    string  `json:"contact_email" validate:"omitempty,email"`
	WebsiteURL      string  `json:"website_url" validate:"omitempty,url,max=1000"`
	BookingURL      string  `json:"booking_url" validate:"omitempty,url,max=1000"`
	GooglePlaceID   string  `json:"google_place_id" validate:"omitempty,max=300"`
	IsFeatured      bool    `json:"is_featured"`
}

// UpdateExperienceRequest is the JSON request body for updating an experience.
type UpdateExperienceRequest struct {
	Title           *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Description     *string  `json:"description" validate:"omitempty,max=5000"`
	CategorySlug    *string  `json:"category_slug" validate:"omitempty"`
	Price           *float64 `json:"price" validate:"omitempty,gte=0"`
	Currency        *string  `json:"currency" validate:"omitempty,len=3"`
	ImageURL        *string  `json:"image_url" validate:"omitempty,max=1000"`
	Location        *string  `json:"location" validate:"omitempty,max=300"`
	Duration        *string  `json:"duration" validate:"omitempty,max=100"`
	ContactPhone    *string  `json:"contact_phone" validate:"omitempty,max=30"`
	ContactWhatsapp *string  `json:"contact_whatsapp" validate:"omitempty,max=30"`
	ContactEmail    *string  `json:"contact_email" validate:"omitempty,email"`
	WebsiteURL      *string  `json:"website_url" validate:"omitempty,max=1000"`
	BookingURL      *string  `json:"booking_url" validate:"omitempty,max=1000"`
	GooglePlaceID   *string  `json:"google_place_id" validate:"omitempty,max=300"`
}

// SetFlagRequest is the JSON request body for toggling a boolean flag.
type SetFlagRequest struct {
	Value bool `json:"value"`
}

// --- Handlers ---

// Create handles POST /api/v1/admin/experiences
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req CreateExperienceRequest
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

	input := service.CreateExperienceInput{
		Title:           req.Title,
		Description:     req.Description,
		CategorySlug:    req.CategorySlug,
		Price:           req.Price,
		Currency:        req.Currency,
		ImageURL:        req.ImageURL,
		Location:        req.Location,
		Duration:        req.Duration,
		ContactPhone:    req.ContactPhone,
		ContactWhatsapp: req.ContactWhatsapp,
		ContactEmail:    req.ContactEmail,
		WebsiteURL:      req.WebsiteURL,
		BookingURL:      req.BookingURL,
		GooglePlaceID:   req.GooglePlaceID,
		IsFeatured:      req.IsFeatured,
	}

	experience, err := h.service.Create(r.Context(), input)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: experience})
}

// Update handles PUT /api/v1/admin/experiences/{id}
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "experience id is required"},
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req UpdateExperienceRequest
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

	input := service.UpdateExperienceInput{
		Title:           req.Title,
		Description:     req.Description,
		CategorySlug:    req.CategorySlug,
		Price:           req.Price,
		Currency:        req.Currency,
		ImageURL:        req.ImageURL,
		Location:        req.Location,
		Duration:        req.Duration,
		ContactPhone:    req.ContactPhone,
		ContactWhatsapp: req.ContactWhatsapp,
		ContactEmail:    req.ContactEmail,
		WebsiteURL:      req.WebsiteURL,
		BookingURL:      req.BookingURL,
		GooglePlaceID:   req.GooglePlaceID,
	}

	experience, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: experience})
}

// Delete handles DELETE /api/v1/admin/experiences/{id}
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "experience id is required"},
		})
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"id": id, "status": "deleted"}})
}

// SetFeatured handles PUT /api/v1/admin/experiences/{id}/featured
func (h *AdminHandler) SetFeatured(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, h.service.SetFeatured)
}

// SetActive handles PUT /api/v1/admin/experiences/{id}/active
func (h *AdminHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, h.service.SetActive)
}

func (h *AdminHandler) setFlag(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, id string, value bool) error,
) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "experience id is required"},
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req SetFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := apply(r.Context(), id, req.Value); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]any{"id": id, "value": req.Value}})
}
