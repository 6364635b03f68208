package universe

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"orbitarium-server/internal/shared/database"
)

// Repository persists named universe snapshots. The engine itself owns no
// storage; snapshots are a shell feature for saving and restoring editing
// sessions.
type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	logger := slog.With("component", "universe_repository", "operation", "init")
	logger.Debug("Initializing universe repository")
	return &Repository{db: db}
}

// SnapshotInfo is snapshot metadata without the (potentially large) state.
type SnapshotInfo struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	BodyCount int       `json:"body_count"`
	CreatedBy int       `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveSnapshot stores a serialized universe under a name.
func (r *Repository) SaveSnapshot(ctx context.Context, name string, state *State, createdBy int) (*SnapshotInfo, error) {
	logger := slog.With(
		"component", "universe_repository",
		"operation", "save_snapshot",
		"name", name,
		"body_count", len(state.Bodies),
	)
	logger.Info("Saving universe snapshot")

	data, err := json.Marshal(state)
	if err != nil {
		logger.Error("Failed to encode snapshot state", "error", err)
		return nil, fmt.Errorf("failed to encode snapshot state: %w", err)
	}

	query := `
		INSERT INTO universe_snapshots (name, state, body_count, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, body_count, created_by, created_at
	`

	var info SnapshotInfo
	err = r.db.QueryRowContext(ctx, query, name, data, len(state.Bodies), createdBy).Scan(
		&info.ID,
		&info.Name,
		&info.BodyCount,
		&info.CreatedBy,
		&info.CreatedAt,
	)
	if err != nil {
		logger.Error("Failed to save snapshot", "error", err)
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	logger.Info("Snapshot saved successfully", "snapshot_id", info.ID)
	return &info, nil
}

// ListSnapshots returns all snapshot metadata, newest first.
func (r *Repository) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	logger := slog.With("component", "universe_repository", "operation", "list_snapshots")
	logger.Debug("Listing universe snapshots")

	query := `
		SELECT id, name, body_count, created_by, created_at
		FROM universe_snapshots
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("Failed to query snapshots", "error", err)
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.BodyCount, &info.CreatedBy, &info.CreatedAt); err != nil {
			logger.Error("Failed to scan snapshot row", "error", err)
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, info)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	logger.Debug("Snapshots listed", "count", len(snapshots))
	return snapshots, nil
}

// GetSnapshot loads one snapshot's state. Returns nil info when not found.
func (r *Repository) GetSnapshot(ctx context.Context, id int) (*SnapshotInfo, *State, error) {
	logger := slog.With("component", "universe_repository", "operation", "get_snapshot", "snapshot_id", id)
	logger.Debug("Loading universe snapshot")

	query := `
		SELECT id, name, body_count, created_by, created_at, state
		FROM universe_snapshots
		WHERE id = $1
	`

	var info SnapshotInfo
	var data []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&info.ID,
		&info.Name,
		&info.BodyCount,
		&info.CreatedBy,
		&info.CreatedAt,
		&data,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			logger.Debug("No snapshot found with ID")
			return nil, nil, nil
		}
		logger.Error("Failed to load snapshot", "error", err)
		return nil, nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		logger.Error("Failed to decode snapshot state", "error", err)
		return nil, nil, fmt.Errorf("failed to decode snapshot state: %w", err)
	}

	logger.Debug("Snapshot loaded", "name", info.Name, "body_count", info.BodyCount)
	return &info, &state, nil
}

// DeleteSnapshot removes a snapshot. Reports whether a row was deleted.
func (r *Repository) DeleteSnapshot(ctx context.Context, id int) (bool, error) {
	logger := slog.With("component", "universe_repository", "operation", "delete_snapshot", "snapshot_id", id)
	logger.Info("Deleting universe snapshot")

	result, err := r.db.ExecContext(ctx, `DELETE FROM universe_snapshots WHERE id = $1`, id)
	if err != nil {
		logger.Error("Failed to delete snapshot", "error", err)
		return false, fmt.Errorf("failed to delete snapshot: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}

	logger.Info("Snapshot delete completed", "deleted", affected > 0)
	return affected > 0, nil
}
