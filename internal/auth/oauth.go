package auth

import (
	"log/slog"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"orbitarium-server/internal/auth/providers"
	"orbitarium-server/internal/shared/config"
)

type OAuthConfig struct {
	GitHubProvider   *providers.GitHubProvider
	GoogleProvider   *providers.GoogleProvider
	GitHubConfigured bool
	GoogleConfigured bool
}

func InitOAuth() *OAuthConfig {
	cfg := config.GlobalConfig
	logger := slog.With("component", "oauth", "operation", "init")
	logger.Debug("Initializing OAuth configurations")

	githubConfig := &oauth2.Config{
		ClientID:     cfg.OAuth.GitHub.ClientID,
		ClientSecret: cfg.OAuth.GitHub.ClientSecret,
		RedirectURL:  cfg.OAuth.GitHub.RedirectURL,
		Scopes:       cfg.OAuth.GitHub.Scopes,
		Endpoint:     github.Endpoint,
	}

	googleConfig := &oauth2.Config{
		ClientID:     cfg.OAuth.Google.ClientID,
		ClientSecret: cfg.OAuth.Google.ClientSecret,
		RedirectURL:  cfg.OAuth.Google.RedirectURL,
		Scopes:       cfg.OAuth.Google.Scopes,
		Endpoint:     google.Endpoint,
	}

	githubConfigured := cfg.GitHubOAuthConfigured()
	googleConfigured := cfg.GoogleOAuthConfigured()

	logger.Info("OAuth configuration completed",
		"github_configured", githubConfigured,
		"google_configured", googleConfigured,
	)

	if !githubConfigured {
		logger.Warn("GitHub OAuth not configured - missing client credentials")
	}
	if !googleConfigured {
		logger.Warn("Google OAuth not configured - missing client credentials")
	}

	return &OAuthConfig{
		GitHubProvider:   providers.NewGitHubProvider(githubConfig),
		GoogleProvider:   providers.NewGoogleProvider(googleConfig),
		GitHubConfigured: githubConfigured,
		GoogleConfigured: googleConfigured,
	}
}
