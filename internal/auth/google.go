package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/wayralabs/qosqo/pkg/httpclient"
)

const (
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	googleRevokeURL   = "https://oauth2.googleapis.com/revoke"
)

// ProviderIdentity is the result of a completed provider sign-in: the stable
// subject plus the display details and the provider access token used for
// later revocation.
type ProviderIdentity struct {
	Subject     string
	Email       string
	FullName    string
	AvatarURL   string
	AccessToken string
}

// GoogleProvider implements the Google OAuth2 authorization code flow.
// The provider is disabled when no client credentials are configured, in
// which case only admin password login is available.
type GoogleProvider struct {
	oauth       *oauth2.Config
	http        *httpclient.CircuitBreakerClient
	userInfoURL string
	revokeURL   string
}

// GoogleConfig holds the OAuth2 client settings for Google sign-in.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// NewGoogleProvider creates a Google identity provider. The HTTP client is
// shared with the rest of the app and wraps calls in a circuit breaker.
func NewGoogleProvider(cfg GoogleConfig, client *httpclient.CircuitBreakerClient) *GoogleProvider {
	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		http:        client,
		userInfoURL: googleUserInfoURL,
		revokeURL:   googleRevokeURL,
	}
}

// Enabled reports whether Google sign-in is configured.
func (p *GoogleProvider) Enabled() bool {
	return p.oauth.ClientID != "" && p.oauth.ClientSecret != ""
}

// AuthURL builds the provider consent page URL for the given CSRF state.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for the user's provider identity.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*ProviderIdentity, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	info, err := p.fetchUserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	if info.Subject == "" {
		return nil, fmt.Errorf("provider returned no subject")
	}

	return &ProviderIdentity{
		Subject:     info.Subject,
		Email:       info.Email,
		FullName:    info.Name,
		AvatarURL:   info.Picture,
		AccessToken: token.AccessToken,
	}, nil
}

// Revoke invalidates the provider access token granted during sign-in.
func (p *GoogleProvider) Revoke(ctx context.Context, accessToken string) error {
	body := url.Values{"token": {accessToken}}.Encode()

	resp, err := p.http.Post(ctx, p.revokeURL, "application/x-www-form-urlencoded", strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("revoke provider token: %w", err)
	}
	defer resp.Body.Close()

	// Google returns 400 for tokens that are already expired or revoked,
	// which is the outcome the caller wanted anyway.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("revoke provider token: unexpected status %d", resp.StatusCode)
	}

	return nil
}

type googleUserInfo struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (p *GoogleProvider) fetchUserInfo(ctx context.Context, accessToken string) (*googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read userinfo body: %w", err)
	}

	var info googleUserInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}

	return &info, nil
}
