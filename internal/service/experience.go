package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wayralabs/qosqo/internal/domain"
	"github.com/wayralabs/qosqo/internal/event"
	"github.com/wayralabs/qosqo/internal/repository"
	apperrors "github.com/wayralabs/qosqo/pkg/errors"
	"github.com/wayralabs/qosqo/pkg/slug"
)

// ExperienceService implements the business logic for the experience directory.
type ExperienceService struct {
	experienceRepo repository.ExperienceRepository
	categoryRepo   repository.CategoryRepository
	producer       *event.Producer
	logger         *slog.Logger
}

// NewExperienceService creates a new experience service.
func NewExperienceService(
	experienceRepo repository.ExperienceRepository,
	categoryRepo repository.CategoryRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *ExperienceService {
	return &ExperienceService{
		experienceRepo: experienceRepo,
		categoryRepo:   categoryRepo,
		producer:       producer,
		logger:         logger,
	}
}

// CreateExperienceInput holds the parameters for creating an experience.
type CreateExperienceInput struct {
	Title           string
	Description     string
	CategorySlug    string
	Price           float64
	Currency        string
	ImageURL        string
	Location        string
	Duration        string
	ContactPhone    string
	ContactWhatsapp string
	ContactEmail    string
	WebsiteURL      string
	BookingURL      string
	GooglePlaceID   string
	IsFeatured      bool
}

// UpdateExperienceInput holds the parameters for updating an experience.
// Nil fields are left unchanged.
type UpdateExperienceInput struct {
	Title           *string
	Description     *string
	CategorySlug    *string
	Price           *float64
	Currency        *string
	ImageURL        *string
	Location        *string
	Duration        *string
	ContactPhone    *string
	ContactWhatsapp *string
	ContactEmail    *string
	WebsiteURL      *string
	BookingURL      *string
	GooglePlaceID   *string
}

// List returns active experiences matching the filter.
func (s *ExperienceService) List(ctx context.Context, filter domain.ExperienceFilter) ([]domain.Experience, int, error) {
	if filter.CategorySlug != "" && !domain.IsValidCategorySlug(filter.CategorySlug) {
		return nil, 0, apperrors.NotFound("category", filter.CategorySlug)
	}

	return s.experienceRepo.List(ctx, filter)
}

// Featured returns the experiences highlighted on the landing page.
func (s *ExperienceService) Featured(ctx context.Context) ([]domain.Experience, error) {
	return s.experienceRepo.ListFeatured(ctx, domain.FeaturedLimit)
}

// Get retrieves a single experience by ID.
func (s *ExperienceService) Get(ctx context.Context, id string) (*domain.Experience, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("experience id is required")
	}
	return s.experienceRepo.GetByID(ctx, id)
}

// Categories returns the directory sections.
func (s *ExperienceService) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

// Create adds a new experience to the directory.
func (s *ExperienceService) Create(ctx context.Context, input CreateExperienceInput) (*domain.Experience, error) {
	if input.Title == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	if !domain.IsValidCategorySlug(input.CategorySlug) {
		return nil, apperrors.InvalidInput("unknown category: " + input.CategorySlug)
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price cannot be negative")
	}

	currency := input.Currency
	if currency == "" {
		currency = "PEN"
	}

	now := time.Now().UTC()
	exp := &domain.Experience{
		ID:              uuid.New().String(),
		Slug:            slug.Generate(input.Title),
		Title:           input.Title,
		Description:     input.Description,
		CategorySlug:    input.CategorySlug,
		Price:           input.Price,
		Currency:        currency,
		ImageURL:        input.ImageURL,
		Location:        input.Location,
		Duration:        input.Duration,
		ContactPhone:    input.ContactPhone,
		ContactWhatsapp: input.ContactWhatsapp,
		ContactEmail:    input.ContactEmail,
		WebsiteURL:      input.WebsiteURL,
		BookingURL:      input.BookingURL,
		GooglePlaceID:   input.GooglePlaceID,
		IsFeatured:      input.IsFeatured,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.experienceRepo.Create(ctx, exp); err != nil {
		return nil, fmt.Errorf("create experience: %w", err)
	}

	if err := s.producer.PublishExperienceCreated(ctx, exp); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish experience.created event",
			slog.String("experience_id", exp.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "experience created",
		slog.String("experience_id", exp.ID),
		slog.String("slug", exp.Slug),
		slog.String("category", exp.CategorySlug),
	)

	return exp, nil
}

// Update modifies an existing experience.
func (s *ExperienceService) Update(ctx context.Context, id string, input UpdateExperienceInput) (*domain.Experience, error) {
	exp, err := s.experienceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil && *input.Title != exp.Title {
		exp.Title = *input.Title
		exp.Slug = slug.Generate(*input.Title)
	}
	if input.Description != nil {
		exp.Description = *input.Description
	}
	if input.CategorySlug != nil {
		if !domain.IsValidCategorySlug(*input.CategorySlug) {
			return nil, apperrors.InvalidInput("unknown category: " + *input.CategorySlug)
		}
		exp.CategorySlug = *input.CategorySlug
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, apperrors.InvalidInput("price cannot be negative")
		}
		exp.Price = *input.Price
	}
	if input.Currency != nil {
		exp.Currency = *input.Currency
	}
	if input.ImageURL != nil {
		exp.ImageURL = *input.ImageURL
	}
	if input.Location != nil {
		exp.Location = *input.Location
	}
	if input.Duration != nil {
		exp.Duration = *input.Duration
	}
	if input.ContactPhone != nil {
		exp.ContactPhone = *input.ContactPhone
	}
	if input.ContactWhatsapp != nil {
		exp.ContactWhatsapp = *input.ContactWhatsapp
	}
	if input.ContactEmail != nil {
		exp.ContactEmail = *input.ContactEmail
	}
	if input.WebsiteURL != nil {
		exp.WebsiteURL = *input.WebsiteURL
	}
	if input.BookingURL != nil {
		exp.BookingURL = *input.BookingURL
	}
	if input.GooglePlaceID != nil {
		exp.GooglePlaceID = *input.GooglePlaceID
	}

	if err := s.experienceRepo.Update(ctx, exp); err != nil {
		return nil, fmt.Errorf("update experience: %w", err)
	}

	if err := s.producer.PublishExperienceUpdated(ctx, exp); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish experience.updated event",
			slog.String("experience_id", exp.ID),
			slog.String("error", err.Error()),
		)
	}

	return exp, nil
}

// Delete removes an experience from the directory.
func (s *ExperienceService) Delete(ctx context.Context, id string) error {
	exp, err := s.experienceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.experienceRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete experience: %w", err)
	}

	if err := s.producer.PublishExperienceDeleted(ctx, exp); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish experience.deleted event",
			slog.String("experience_id", exp.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "experience deleted",
		slog.String("experience_id", id),
	)

	return nil
}

// SetFeatured flips the featured flag on an experience.
func (s *ExperienceService) SetFeatured(ctx context.Context, id string, featured bool) error {
	if err := s.experienceRepo.SetFeatured(ctx, id, featured); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "experience featured flag changed",
		slog.String("experience_id", id),
		slog.Bool("featured", featured),
	)

	return nil
}

// SetActive flips the active flag on an experience. Deactivated experiences
// disappear from public listings but keep their wishlist rows.
func (s *ExperienceService) SetActive(ctx context.Context, id string, active bool) error {
	if err := s.experienceRepo.SetActive(ctx, id, active); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "experience active flag changed",
		slog.String("experience_id", id),
		slog.Bool("active", active),
	)

	return nil
}
