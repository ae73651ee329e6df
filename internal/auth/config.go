package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

var AccessTokenCookieName string = "access_token"

var (
	DefaultDiscoveryRetries = 5
	DefaultDiscoveryDelay   = 10 * time.Second
)

type Config struct {
	BaseUri     string
	JWKsURI     string
	LoginConfig oauth2.Config
}

// BuildAuthConfig discovers the OIDC provider at authProviderUrl and
// prepares the authorization-code flow for clientID.
func BuildAuthConfig(ctx context.Context, clientID string, authProviderUrl string, redirectUrl string) (*Config, error) {
	provider, err := loadOIDCConfig(ctx, authProviderUrl, DefaultDiscoveryRetries, DefaultDiscoveryDelay)
	if err != nil {
		return nil, fmt.Errorf("could not load OIDC configuration: %w", err)
	}

	var claims struct {
		JWKsURI string `json:"jwks_uri"`
	}
	if err := provider.Claims(&claims); err != nil {
		return nil, fmt.Errorf("could not read OIDC provider claims: %w", err)
	}
	if claims.JWKsURI == "" {
		return nil, fmt.Errorf("OIDC provider %s did not advertise a jwks_uri", authProviderUrl)
	}

	config := &Config{
		LoginConfig: oauth2.Config{
			ClientID:    clientID,
			Endpoint:    provider.Endpoint(),
			RedirectURL: redirectUrl,
			Scopes:      []string{"profile", "email", oidc.ScopeOpenID},
		},
		BaseUri: authProviderUrl,
		JWKsURI: claims.JWKsURI,
	}
	return config, nil
}

func loadOIDCConfig(ctx context.Context, authProviderUrl string, retries int, delay time.Duration) (*oidc.Provider, error) {
	var provider *oidc.Provider
	var err error
	for i := 0; i < retries; i++ {
		provider, err = oidc.NewProvider(ctx, authProviderUrl)
		if err == nil {
			return provider, nil
		}
		slog.Warn("could not load OIDC config", "attempt", i+1, "url", authProviderUrl, "err", err)
		if i+1 < retries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return nil, err
}
