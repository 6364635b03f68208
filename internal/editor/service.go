package editor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	apperrors "orbitarium-server/internal/shared/errors"
)

type Service struct {
	repo   *Repository
	logger *slog.Logger
}

func NewService(repo *Repository, logger *slog.Logger) *Service {
	logger.Debug("Initializing editor service")
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetEditorByID(ctx context.Context, id int) (*Editor, error) {
	return s.repo.GetEditorByID(ctx, id)
}

func (s *Service) GetEditorCount(ctx context.Context) (int, error) {
	return s.repo.GetEditorCount(ctx)
}

// FindOrCreateEditorByOAuth resolves an OAuth login to an editor account,
// creating one on first login.
func (s *Service) FindOrCreateEditorByOAuth(ctx context.Context, provider, providerUserID, email, displayName string, avatarURL *string) (*Editor, error) {
	logger := s.logger.With(
		"component", "editor_service",
		"operation", "find_or_create_oauth",
		"provider", provider,
		"email", email,
	)
	logger.Debug("Finding or creating editor by OAuth")

	editor, err := s.repo.FindEditorByEmail(ctx, email)
	if err != nil && apperrors.GetType(err) != apperrors.ErrorTypeNotFound {
		logger.Error("Database error checking for editor by email", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	if editor != nil {
		logger.Info("Found existing editor by email", "editor_id", editor.ID)
		return editor, nil
	}

	logger.Info("No existing editor found, creating new editor with OAuth provider")
	username := generateUsernameFromEmail(email)

	editor, err = s.repo.CreateEditor(ctx, username, email, displayName, avatarURL)
	if err != nil {
		logger.Error("Failed to create editor", "error", err)
		return nil, fmt.Errorf("failed to create editor: %w", err)
	}

	logger.Info("Successfully created new editor with OAuth",
		"editor_id", editor.ID,
		"username", editor.Username,
		"provider", provider)

	return editor, nil
}

func generateUsernameFromEmail(email string) string {
	if idx := strings.Index(email, "@"); idx > 0 {
		return email[:idx]
	}
	return "editor"
}
