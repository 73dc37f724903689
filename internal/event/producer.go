package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wayralabs/qosqo/internal/domain"
	pkgkafka "github.com/wayralabs/qosqo/pkg/kafka"
)

// Kafka topics for domain events published by the API.
var (
	TopicUserSignedIn        = pkgkafka.Topic("user", "signed_in")
	TopicUserSignedOut       = pkgkafka.Topic("user", "signed_out")
	TopicWishlistItemAdded   = pkgkafka.Topic("wishlist", "item_added")
	TopicWishlistItemRemoved = pkgkafka.Topic("wishlist", "item_removed")
	TopicExperienceCreated   = pkgkafka.Topic("experience", "created")
	TopicExperienceUpdated   = pkgkafka.Topic("experience", "updated")
	TopicExperienceDeleted   = pkgkafka.Topic("experience", "deleted")
)

// Aggregate type constants.
const (
	AggregateTypeUser       = "user"
	AggregateTypeWishlist   = "wishlist"
	AggregateTypeExperience = "experience"
)

// Source identifier for events originating from this API.
const SourceAPI = "qosqo-api"

// UserSessionData is the payload for user.signed_in and user.signed_out events.
type UserSessionData struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// WishlistItemData is the payload for wishlist.item_added and wishlist.item_removed events.
type WishlistItemData struct {
	UserID       string `json:"user_id"`
	ExperienceID string `json:"experience_id"`
}

// ExperienceData is the payload for experience lifecycle events.
type ExperienceData struct {
	ExperienceID string `json:"experience_id"`
	Slug         string `json:"slug"`
	Title        string `json:"title"`
	CategorySlug string `json:"category_slug"`
}

// Producer publishes domain events to Kafka. Publish failures are logged by
// callers and never block the request path.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the API.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserSignedIn publishes a user.signed_in event.
func (p *Producer) PublishUserSignedIn(ctx context.Context, user *domain.User) error {
	data := UserSessionData{
		UserID:   user.ID,
		Email:    user.Email,
		Provider: user.OAuthProvider,
	}

	return p.publish(ctx, TopicUserSignedIn, user.ID, AggregateTypeUser, data)
}

// PublishUserSignedOut publishes a user.signed_out event.
func (p *Producer) PublishUserSignedOut(ctx context.Context, userID string) error {
	data := UserSessionData{UserID: userID}

	return p.publish(ctx, TopicUserSignedOut, userID, AggregateTypeUser, data)
}

// PublishWishlistItemAdded publishes a wishlist.item_added event.
func (p *Producer) PublishWishlistItemAdded(ctx context.Context, userID, experienceID string) error {
	data := WishlistItemData{UserID: userID, ExperienceID: experienceID}

	return p.publish(ctx, TopicWishlistItemAdded, userID, AggregateTypeWishlist, data)
}

// PublishWishlistItemRemoved publishes a wishlist.item_removed event.
func (p *Producer) PublishWishlistItemRemoved(ctx context.Context, userID, experienceID string) error {
	data := WishlistItemData{UserID: userID, ExperienceID: experienceID}

	return p.publish(ctx, TopicWishlistItemRemoved, userID, AggregateTypeWishlist, data)
}

// PublishExperienceCreated publishes an experience.created event.
func (p *Producer) PublishExperienceCreated(ctx context.Context, exp *domain.Experience) error {
	return p.publish(ctx, TopicExperienceCreated, exp.ID, AggregateTypeExperience, experienceData(exp))
}

// PublishExperienceUpdated publishes an experience.updated event.
func (p *Producer) PublishExperienceUpdated(ctx context.Context, exp *domain.Experience) error {
	return p.publish(ctx, TopicExperienceUpdated, exp.ID, AggregateTypeExperience, experienceData(exp))
}

// PublishExperienceDeleted publishes an experience.deleted event.
func (p *Producer) PublishExperienceDeleted(ctx context.Context, exp *domain.Experience) error {
	return p.publish(ctx, TopicExperienceDeleted, exp.ID, AggregateTypeExperience, experienceData(exp))
}

func experienceData(exp *domain.Experience) ExperienceData {
	return ExperienceData{
		ExperienceID: exp.ID,
		Slug:         exp.Slug,
		Title:        exp.Title,
		CategorySlug: exp.CategorySlug,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	evt, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceAPI, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}
