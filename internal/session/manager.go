// Package session owns the sign-in lifecycle. The manager is the single
// authority for who is signed in: handlers ask it to start and finish the
// provider flow, and other components subscribe to hear identity changes.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/wayralabs/qosqo/internal/auth"
	"github.com/wayralabs/qosqo/internal/domain"
	"github.com/wayralabs/qosqo/internal/event"
	"github.com/wayralabs/qosqo/internal/repository"
	apperrors "github.com/wayralabs/qosqo/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// IdentityProvider abstracts the external sign-in provider.
type IdentityProvider interface {
	// Enabled reports whether the provider is configured.
	Enabled() bool

	// AuthURL builds the provider consent page URL for the given CSRF state.
	AuthURL(state string) string

	// Exchange trades an authorization code for the user's provider identity.
	Exchange(ctx context.Context, code string) (*auth.ProviderIdentity, error)

	// Revoke invalidates the provider access token granted during sign-in.
	Revoke(ctx context.Context, accessToken string) error
}

// Change describes an identity transition delivered to subscribers.
type Change struct {
	UserID   string
	SignedIn bool
}

// Manager implements the sign-in lifecycle: the provider redirect flow,
// admin password login, token refresh, sign-out, and profile lookups.
type Manager struct {
	userRepo         repository.UserRepository
	profileRepo      repository.ProfileRepository
	refreshTokenRepo repository.RefreshTokenRepository
	jwtManager       *auth.JWTManager
	provider         IdentityProvider
	producer         *event.Producer
	logger           *slog.Logger

	mu          sync.Mutex
	initialized bool
	// grants maps user IDs to the provider access token recorded at sign-in,
	// used for best-effort revocation at sign-out. Grants do not survive a
	// restart; sign-out then skips provider revocation.
	grants      map[string]string
	subscribers map[int]func(Change)
	nextSubID   int
}

// NewManager creates a session manager. Call Initialize before use.
func NewManager(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	jwtManager *auth.JWTManager,
	provider IdentityProvider,
	producer *event.Producer,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		userRepo:         userRepo,
		profileRepo:      profileRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwtManager:       jwtManager,
		provider:         provider,
		producer:         producer,
		logger:           logger,
		grants:           make(map[string]string),
		subscribers:      make(map[int]func(Change)),
	}
}

// Initialize prepares the manager for use. Calling it again is a no-op, so
// concurrent startup paths can all call it safely.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}
	m.initialized = true

	m.logger.InfoContext(ctx, "session manager initialized",
		slog.Bool("google_sign_in", m.provider.Enabled()),
	)

	return nil
}

// Subscribe registers a callback invoked on every identity change. The
// returned function removes the subscription. Callbacks run synchronously on
// the goroutine that caused the change and must not block.
func (m *Manager) Subscribe(fn func(Change)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, id)
	}
}

// SignInURL returns the provider consent page URL for the given CSRF state.
func (m *Manager) SignInURL(state string) (string, error) {
	if !m.provider.Enabled() {
		return "", apperrors.InvalidInput("google sign-in is not configured")
	}
	return m.provider.AuthURL(state), nil
}

// CompleteSignIn finishes the provider redirect flow: it exchanges the
// authorization code, finds or creates the local user, refreshes the stored
// profile, and mints a token pair.
func (m *Manager) CompleteSignIn(ctx context.Context, code string) (*domain.User, *domain.TokenPair, error) {
	if code == "" {
		return nil, nil, apperrors.InvalidInput("authorization code is required")
	}

	identity, err := m.provider.Exchange(ctx, code)
	if err != nil {
		return nil, nil, apperrors.Unauthorized("provider sign-in failed")
	}

	user, err := m.findOrCreateUser(ctx, identity)
	if err != nil {
		return nil, nil, err
	}

	if !user.IsActive {
		return nil, nil, apperrors.Unauthorized("account is deactivated")
	}

	// Refresh the stored profile with whatever the provider sent. A profile
	// write failure does not block sign-in.
	profile := &domain.Profile{
		UserID:    user.ID,
		FullName:  identity.FullName,
		AvatarURL: identity.AvatarURL,
		Email:     identity.Email,
	}
	if err := m.profileRepo.Upsert(ctx, profile); err != nil {
		m.logger.ErrorContext(ctx, "failed to upsert profile at sign-in",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	tokens, err := m.generateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	m.mu.Lock()
	m.grants[user.ID] = identity.AccessToken
	m.mu.Unlock()

	m.notify(Change{UserID: user.ID, SignedIn: true})

	if err := m.producer.PublishUserSignedIn(ctx, user); err != nil {
		m.logger.ErrorContext(ctx, "failed to publish user.signed_in event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	m.logger.InfoContext(ctx, "user signed in",
		slog.String("user_id", user.ID),
		slog.String("provider", domain.ProviderGoogle),
	)

	return user, tokens, nil
}

// PasswordSignIn authenticates an admin with email and password.
func (m *Manager) PasswordSignIn(ctx context.Context, email, password string) (*domain.User, *domain.TokenPair, error) {
	if email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if password == "" {
		return nil, nil, apperrors.InvalidInput("password is required")
	}

	user, err := m.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, apperrors.Unauthorized("invalid email or password")
	}

	if !user.IsActive {
		return nil, nil, apperrors.Unauthorized("account is deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperrors.Unauthorized("invalid email or password")
	}

	tokens, err := m.generateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	m.notify(Change{UserID: user.ID, SignedIn: true})

	if err := m.producer.PublishUserSignedIn(ctx, user); err != nil {
		m.logger.ErrorContext(ctx, "failed to publish user.signed_in event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	m.logger.InfoContext(ctx, "user signed in",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role),
	)

	return user, tokens, nil
}

// Refresh validates a refresh token and generates a new token pair.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if refreshToken == "" {
		return nil, apperrors.InvalidInput("refresh token is required")
	}

	claims, err := m.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired refresh token")
	}

	tokenHash := hashToken(refreshToken)
	stored, err := m.refreshTokenRepo.GetByHash(ctx, tokenHash)
	if err != nil {
		return nil, apperrors.Unauthorized("refresh token not found")
	}

	if stored.RevokedAt != nil {
		return nil, apperrors.Unauthorized("refresh token has been revoked")
	}

	if time.Now().UTC().After(stored.ExpiresAt) {
		return nil, apperrors.Unauthorized("refresh token has expired")
	}

	// Rotate: the old token stops working as soon as a new pair exists.
	if err := m.refreshTokenRepo.Revoke(ctx, tokenHash); err != nil {
		m.logger.ErrorContext(ctx, "failed to revoke old refresh token",
			slog.String("user_id", claims.UserID),
			slog.String("error", err.Error()),
		)
	}

	user, err := m.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user for token refresh: %w", err)
	}

	tokens, err := m.generateTokenPair(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("generate tokens: %w", err)
	}

	// A refreshed session is a confirmed signed-in identity; subscribers
	// (the wishlist cache among them) hear about it the same way they hear
	// about a fresh sign-in.
	m.notify(Change{UserID: user.ID, SignedIn: true})

	m.logger.InfoContext(ctx, "tokens refreshed",
		slog.String("user_id", user.ID),
	)

	return tokens, nil
}

// SignOut ends the user's session. Local state is always cleared: refresh
// tokens are revoked, the recorded provider grant is dropped, and subscribers
// are told the user signed out. Provider revocation is attempted when a grant
// exists; its failure is reported to the caller but never undoes the local
// sign-out.
func (m *Manager) SignOut(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.InvalidInput("user id is required")
	}

	m.mu.Lock()
	grant, hasGrant := m.grants[userID]
	delete(m.grants, userID)
	m.mu.Unlock()

	var providerErr error
	if hasGrant {
		if err := m.provider.Revoke(ctx, grant); err != nil {
			providerErr = fmt.Errorf("provider revocation: %w", err)
			m.logger.WarnContext(ctx, "provider token revocation failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := m.refreshTokenRepo.RevokeByUserID(ctx, userID); err != nil {
		m.logger.ErrorContext(ctx, "failed to revoke refresh tokens at sign-out",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	m.notify(Change{UserID: userID, SignedIn: false})

	if err := m.producer.PublishUserSignedOut(ctx, userID); err != nil {
		m.logger.ErrorContext(ctx, "failed to publish user.signed_out event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	m.logger.InfoContext(ctx, "user signed out",
		slog.String("user_id", userID),
	)

	return providerErr
}

// FetchProfile returns the user's stored profile. Lookup failures are
// swallowed: the session stays usable without display details, so a missing
// or unreachable profile yields nil rather than an error.
func (m *Manager) FetchProfile(ctx context.Context, userID string) *domain.Profile {
	profile, err := m.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		m.logger.WarnContext(ctx, "profile fetch failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil
	}

	return profile
}

// HashPassword hashes an admin password for provisioning.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (m *Manager) findOrCreateUser(ctx context.Context, identity *auth.ProviderIdentity) (*domain.User, error) {
	user, err := m.userRepo.GetByOAuth(ctx, domain.ProviderGoogle, identity.Subject)
	if err == nil {
		return user, nil
	}

	now := time.Now().UTC()
	user = &domain.User{
		ID:            uuid.New().String(),
		Email:         identity.Email,
		Role:          domain.RoleTraveler,
		IsActive:      true,
		OAuthProvider: domain.ProviderGoogle,
		OAuthSubject:  identity.Subject,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := m.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	m.logger.InfoContext(ctx, "user registered via provider",
		slog.String("user_id", user.ID),
		slog.String("provider", domain.ProviderGoogle),
	)

	return user, nil
}

func (m *Manager) generateTokenPair(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	accessToken, err := m.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := m.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	refreshClaims, err := m.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("validate refresh token for expiry: %w", err)
	}

	tokenHash := hashToken(refreshToken)
	if err := m.refreshTokenRepo.Create(ctx, user.ID, tokenHash, refreshClaims.ExpiresAt.Time); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (m *Manager) notify(change Change) {
	m.mu.Lock()
	fns := make([]func(Change), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
