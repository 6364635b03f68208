package auth

import (
	"context"
	"log/slog"
)

type Service struct {
	repo   *Repository
	logger *slog.Logger
}

func NewService(repo *Repository, logger *slog.Logger) *Service {
	logger.Debug("Initializing auth service")

	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) CreateAuthProvider(ctx context.Context, editorID int, provider, providerUserID, providerEmail string) error {
	return s.repo.CreateAuthProvider(ctx, editorID, provider, providerUserID, providerEmail)
}

func (s *Service) FindEditorByAuthProvider(ctx context.Context, provider, providerUserID string) (int, error) {
	return s.repo.FindEditorByAuthProvider(ctx, provider, providerUserID)
}
