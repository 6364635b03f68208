package auth

import (
	"context"
	"database/sql"

	"orbitarium-server/internal/shared/database"
	apperrors "orbitarium-server/internal/shared/errors"
)

type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateAuthProvider(ctx context.Context, editorID int, provider, providerUserID, providerEmail string) error {
	query := `
		INSERT INTO editor_auth_providers (editor_id, provider, provider_user_id, provider_email)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, editorID, provider, providerUserID, providerEmail)
	if err != nil {
		return apperrors.WrapInternal("failed to create auth provider", err)
	}

	return nil
}

func (r *Repository) FindEditorByAuthProvider(ctx context.Context, provider, providerUserID string) (int, error) {
	query := `
		SELECT editor_id
		FROM editor_auth_providers
		WHERE provider = $1 AND provider_user_id = $2
	`

	var editorID int
	err := r.db.QueryRowContext(ctx, query, provider, providerUserID).Scan(&editorID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, apperrors.NotFoundf("editor not found for auth provider: %s", provider)
		}
		return 0, apperrors.WrapInternal("failed to find editor by auth provider", err)
	}

	return editorID, nil
}
