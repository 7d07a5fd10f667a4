package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/desertthunder/riff/internal/claims"
	"github.com/desertthunder/riff/internal/shared"
)

// Authenticator runs the authorization code flow against an identity provider.
type Authenticator interface {
	// AuthCodeURL returns the authorization URL for state, committing to verifier with PKCE.
	AuthCodeURL(state, verifier string) string

	// Exchange redeems code and returns the verified claim set of the logged in user.
	Exchange(ctx context.Context, code, verifier string) (claims.Claims, error)
}

var _ Authenticator = (*OIDCProvider)(nil)

// OIDCProvider authenticates users against an OpenID Connect issuer found by discovery.
//
// It returns identity facts only. Creating or updating local users is left to the caller.
type OIDCProvider struct {
	provider *oidc.Provider
	config   *oauth2.Config
	verifier *oidc.IDTokenVerifier
	logger   *log.Logger
}

// NewOIDCProvider discovers the issuer configured in cfg and prepares the OAuth2 client.
func NewOIDCProvider(ctx context.Context, cfg shared.IdentityConfig, logger *log.Logger) (*OIDCProvider, error) {
	if cfg.Issuer == "" || cfg.ClientID == "" || cfg.RedirectURL == "" {
		return nil, fmt.Errorf("%w: identity issuer, client_id and redirect_url are required", shared.ErrMissingConfig)
	}

	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover identity provider: %w", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	return &OIDCProvider{
		provider: provider,
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       scopes,
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		logger:   logger,
	}, nil
}

// AuthCodeURL builds the authorization URL with an S256 PKCE challenge.
func (p *OIDCProvider) AuthCodeURL(state, verifier string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier))
}

// Exchange redeems the authorization code, verifies the id_token and merges the
// UserInfo response over the token claims. The subject always comes from the token.
func (p *OIDCProvider) Exchange(ctx context.Context, code, verifier string) (claims.Claims, error) {
	token, err := p.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		p.logger.Error("token exchange failed", "error", err)
		return nil, fmt.Errorf("%w: token exchange: %v", shared.ErrAuthFailed, err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("%w: provider did not return id_token", shared.ErrAuthFailed)
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		p.logger.Error("id_token verification failed", "error", err)
		return nil, fmt.Errorf("%w: id_token verification: %v", shared.ErrAuthFailed, err)
	}

	var merged claims.Claims
	if err := idToken.Claims(&merged); err != nil {
		return nil, fmt.Errorf("failed to parse id_token claims: %w", err)
	}

	info, err := p.provider.UserInfo(ctx, oauth2.StaticTokenSource(token))
	switch {
	case errors.Is(err, context.Canceled):
		return nil, err
	case err != nil:
		p.logger.Warn("userinfo unavailable, using id_token claims only", "error", err)
	default:
		var extra claims.Claims
		if err := info.Claims(&extra); err != nil {
			return nil, fmt.Errorf("failed to parse userinfo claims: %w", err)
		}
		for k, v := range extra {
			if k == claims.Subject {
				continue
			}
			merged[k] = v
		}
	}

	p.logger.Debug("identity verified", "issuer", idToken.Issuer, "subject", idToken.Subject, "expiry", idToken.Expiry)
	return merged, nil
}

// DecodeClaims parses a JSON claim object, as printed by the claims command or stored in a session.
func DecodeClaims(data []byte) (claims.Claims, error) {
	var c claims.Claims
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: claims must be a JSON object: %v", shared.ErrInvalidInput, err)
	}
	if c == nil {
		c = claims.Claims{}
	}
	return c, nil
}
