package editor

import (
	"context"
	"database/sql"
	"log/slog"

	"orbitarium-server/internal/shared/database"
	apperrors "orbitarium-server/internal/shared/errors"
)

type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	logger := slog.With("component", "editor_repository", "operation", "init")
	logger.Debug("Initializing editor repository")
	return &Repository{db: db}
}

const editorColumns = `id, username, email, display_name, avatar_url, created_at, updated_at`

func scanEditor(row *sql.Row) (*Editor, error) {
	var e Editor
	err := row.Scan(
		&e.ID,
		&e.Username,
		&e.Email,
		&e.DisplayName,
		&e.AvatarURL,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repository) CreateEditor(ctx context.Context, username, email, displayName string, avatarURL *string) (*Editor, error) {
	logger := slog.With(
		"component", "editor_repository",
		"operation", "create",
		"username", username,
		"email", email,
	)
	logger.Info("Creating new editor")

	query := `
		INSERT INTO editors (username, email, display_name, avatar_url)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + editorColumns

	editor, err := scanEditor(r.db.QueryRowContext(ctx, query, username, email, displayName, avatarURL))
	if err != nil {
		logger.Error("Failed to create editor", "error", err)
		return nil, apperrors.WrapInternal("failed to create editor", err)
	}

	logger.Info("Editor created successfully", "editor_id", editor.ID)
	return editor, nil
}

func (r *Repository) FindEditorByEmail(ctx context.Context, email string) (*Editor, error) {
	logger := slog.With("component", "editor_repository", "operation", "find_by_email", "email", email)
	logger.Debug("Finding editor by email")

	query := `SELECT ` + editorColumns + ` FROM editors WHERE email = $1`

	editor, err := scanEditor(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFoundf("no editor found with email %s", email)
		}
		logger.Error("Database error finding editor by email", "error", err)
		return nil, apperrors.WrapInternal("failed to find editor by email", err)
	}

	return editor, nil
}

func (r *Repository) GetEditorByID(ctx context.Context, id int) (*Editor, error) {
	logger := slog.With("component", "editor_repository", "operation", "get_by_id", "editor_id", id)
	logger.Debug("Getting editor by ID")

	query := `SELECT ` + editorColumns + ` FROM editors WHERE id = $1`

	editor, err := scanEditor(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFoundf("no editor found with id %d", id)
		}
		logger.Error("Database error getting editor by ID", "error", err)
		return nil, apperrors.WrapInternal("failed to get editor", err)
	}

	return editor, nil
}

func (r *Repository) GetEditorCount(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM editors`).Scan(&count); err != nil {
		return 0, apperrors.WrapInternal("failed to get editor count", err)
	}
	return count, nil
}
