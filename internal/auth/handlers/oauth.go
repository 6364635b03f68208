package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"orbitarium-server/internal/auth"
	"orbitarium-server/internal/auth/providers"
	"orbitarium-server/internal/editor"
	"orbitarium-server/internal/shared/config"
	"orbitarium-server/internal/shared/cookies"
	apperrors "orbitarium-server/internal/shared/errors"
)

// OAuthHandler runs the authorization-code flow for any provider: the flow
// is identical across providers, only the user-info fetch differs and that
// lives behind the provider interface.
type OAuthHandler struct {
	provider      providers.OAuthProvider
	editorService *editor.Service
	authService   *auth.Service
	isConfigured  bool
}

func NewOAuthHandler(provider providers.OAuthProvider, editorService *editor.Service, authService *auth.Service, isConfigured bool) *OAuthHandler {
	return &OAuthHandler{
		provider:      provider,
		editorService: editorService,
		authService:   authService,
		isConfigured:  isConfigured,
	}
}

// HandleAuth initiates the OAuth flow.
func (h *OAuthHandler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	name := h.provider.Name()
	logger := slog.With(
		"handler", name+"_oauth_init",
		"user_agent", r.UserAgent(),
		"ip", r.RemoteAddr,
	)

	if !h.isConfigured {
		logger.Error("OAuth not configured - missing client credentials", "provider", name)
		redirectWithError(w, r, "oauth_not_configured", "Login provider is not configured")
		return
	}

	state, err := auth.GenerateOAuthState(name, r.UserAgent())
	if err != nil {
		logger.Error("Failed to generate state token", "error", err)
		redirectWithError(w, r, "internal_error", "Failed to initialize OAuth flow")
		return
	}

	url := h.provider.GetAuthURL(state)
	logger.Info("Initiating OAuth flow", "provider", name)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// HandleCallback processes the provider's callback, resolves or creates the
// editor account, and sets the auth cookie.
func (h *OAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	name := h.provider.Name()
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	logger := slog.With(
		"handler", name+"_oauth_callback",
		"user_agent", r.UserAgent(),
		"ip", r.RemoteAddr,
		"has_code", code != "",
		"has_state", state != "",
	)

	if errorParam := r.URL.Query().Get("error"); errorParam != "" {
		logger.Warn("OAuth authorization denied",
			"oauth_error", errorParam,
			"error_description", r.URL.Query().Get("error_description"))
		redirectWithError(w, r, "oauth_denied", "Authorization was denied")
		return
	}

	if code == "" {
		logger.Error("OAuth callback missing authorization code")
		redirectWithError(w, r, "oauth_error", "Missing authorization code")
		return
	}

	if err := auth.ValidateOAuthState(state, name, r.UserAgent()); err != nil {
		logger.Error("OAuth state validation failed", "error", err)
		redirectWithError(w, r, "oauth_error", "Invalid request state - possible CSRF attack")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	token, err := h.provider.ExchangeCode(ctx, code)
	if err != nil {
		logger.Error("Failed to exchange authorization code", "error", err)
		redirectWithError(w, r, "oauth_error", "Failed to exchange authorization code")
		return
	}

	userInfo, err := h.provider.GetUserInfo(ctx, token)
	if err != nil {
		logger.Error("Failed to get user info from provider", "error", err)
		redirectWithError(w, r, "oauth_error", "Failed to retrieve user information")
		return
	}

	userLogger := logger.With("user_email", userInfo.Email, "provider_user_id", userInfo.ID)

	if userInfo.Email == "" {
		userLogger.Error("OAuth user info missing required email field")
		redirectWithError(w, r, "oauth_error", "Email address is required for registration")
		return
	}

	ed, err := h.resolveEditor(ctx, userInfo)
	if err != nil {
		userLogger.Error("Failed to resolve editor account", "error", err)
		redirectWithError(w, r, "database_error", "Failed to authenticate user")
		return
	}

	jwtToken, err := auth.GenerateJWT(ed.ID, ed.Username, ed.Email)
	if err != nil {
		userLogger.Error("Failed to generate JWT token", "error", err, "editor_id", ed.ID)
		redirectWithError(w, r, "auth_error", "Failed to create authentication token")
		return
	}

	cookies.SetAuthCookie(w, jwtToken)

	userLogger.Info("OAuth authentication successful",
		"provider", name,
		"editor_id", ed.ID,
		"new_editor", time.Since(ed.CreatedAt) < time.Minute)

	frontendURL := config.GlobalConfig.Frontend.URL
	http.Redirect(w, r, fmt.Sprintf("%s/auth/callback?success=true", frontendURL), http.StatusTemporaryRedirect)
}

// resolveEditor looks up the provider link first, then falls back to
// find-or-create by email, linking the provider on first login.
func (h *OAuthHandler) resolveEditor(ctx context.Context, userInfo *providers.OAuthUser) (*editor.Editor, error) {
	name := h.provider.Name()

	editorID, err := h.authService.FindEditorByAuthProvider(ctx, name, userInfo.ID)
	if err == nil {
		return h.editorService.GetEditorByID(ctx, editorID)
	}
	if apperrors.GetType(err) != apperrors.ErrorTypeNotFound {
		return nil, err
	}

	ed, err := h.editorService.FindOrCreateEditorByOAuth(ctx, name, userInfo.ID, userInfo.Email, userInfo.Name, &userInfo.AvatarURL)
	if err != nil {
		return nil, err
	}
	if err := h.authService.CreateAuthProvider(ctx, ed.ID, name, userInfo.ID, userInfo.Email); err != nil {
		return nil, err
	}
	return ed, nil
}
