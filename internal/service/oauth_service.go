package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/taskrelay/taskrelay-api/internal/models"
	"github.com/taskrelay/taskrelay-api/pkg/config"
	appErrors "github.com/taskrelay/taskrelay-api/pkg/errors"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// OAuthService drives the Google OAuth login flows. Users and admins share
// one client registration but use separate callback paths, so the provider
// redirects back into the correct variant's flow.
type OAuthService struct {
	resolver *IdentityResolver
	tokens   *TokenIssuer
	configs  map[models.Role]*oauth2.Config
	logger   *zap.Logger
}

// NewOAuthService constructs an OAuthService from the provider registration.
func NewOAuthService(cfg config.OAuthConfig, resolver *IdentityResolver, tokens *TokenIssuer, logger *zap.Logger) *OAuthService {
	if logger == nil {
		logger = zap.NewNop()
	}

	newConfig := func(callbackPath string) *oauth2.Config {
		return &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.BaseURL + callbackPath,
			Scopes: []string{
				"openid",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		}
	}

	return &OAuthService{
		resolver: resolver,
		tokens:   tokens,
		configs: map[models.Role]*oauth2.Config{
			models.RoleUser:  newConfig("/api/v1/auth/google/callback"),
			models.RoleAdmin: newConfig("/api/v1/auth/admin/google/callback"),
		},
		logger: logger,
	}
}

// IsConfigured reports whether the Google client registration is present.
func (s *OAuthService) IsConfigured() bool {
	cfg := s.configs[models.RoleUser]
	return cfg.ClientID != "" && cfg.ClientSecret != ""
}

// AuthCodeURL returns the provider consent URL for the given variant's flow.
func (s *OAuthService) AuthCodeURL(kind models.Role, state string) string {
	return s.configs[kind].AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// HandleCallback exchanges the authorization code, fetches the verified
// profile and resolves it to a local principal, issuing a bearer token.
func (s *OAuthService) HandleCallback(ctx context.Context, kind models.Role, code string) (*models.AuthResult, error) {
	cfg, ok := s.configs[kind]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInternal, "unknown oauth flow")
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthenticated.Code, appErrors.ErrUnauthenticated.Status, "login failed")
	}

	profile, err := s.fetchProfile(ctx, cfg, token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthenticated.Code, appErrors.ErrUnauthenticated.Status, "login failed")
	}

	principal, err := s.resolver.Resolve(ctx, kind, *profile)
	if err != nil {
		return nil, err
	}

	bearer, err := s.tokens.Issue(principal.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue token")
	}

	return &models.AuthResult{Token: bearer, Principal: principal}, nil
}

func (s *OAuthService) fetchProfile(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (*models.Profile, error) {
	resp, err := cfg.Client(ctx, token).Get(googleUserinfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned %d", resp.StatusCode)
	}

	var payload struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if payload.ID == "" || payload.Email == "" {
		return nil, fmt.Errorf("userinfo response missing id or email")
	}

	return &models.Profile{
		Provider:    models.OAuthProviderGoogle,
		ExternalID:  payload.ID,
		DisplayName: payload.Name,
		Email:       payload.Email,
	}, nil
}
