package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"orbitarium-server/internal/middleware"
	apperrors "orbitarium-server/internal/shared/errors"
	"orbitarium-server/internal/shared/response"
	"orbitarium-server/internal/universe"
)

// SnapshotsHandler persists and restores named universe snapshots. All
// snapshot routes sit behind the JWT middleware; the editor id from the
// claims is recorded as the creator.
type SnapshotsHandler struct {
	sim  *universe.Service
	repo *universe.Repository
}

func NewSnapshotsHandler(sim *universe.Service, repo *universe.Repository) *SnapshotsHandler {
	return &SnapshotsHandler{sim: sim, repo: repo}
}

// Snapshots dispatches the collection endpoint: GET lists, POST saves the
// live universe.
func (h *SnapshotsHandler) Snapshots(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listSnapshots(w, r)
	case http.MethodPost:
		h.createSnapshot(w, r)
	default:
		logger := slog.With("handler", "snapshots")
		response.Error(w, r, logger, apperrors.MethodNotAllowed(r.Method))
	}
}

// Snapshot dispatches the single-snapshot endpoint: GET and DELETE.
func (h *SnapshotsHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getSnapshot(w, r)
	case http.MethodDelete:
		h.deleteSnapshot(w, r)
	default:
		logger := slog.With("handler", "snapshot")
		response.Error(w, r, logger, apperrors.MethodNotAllowed(r.Method))
	}
}

func (h *SnapshotsHandler) listSnapshots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "list_snapshots")

	snapshots, err := h.repo.ListSnapshots(ctx)
	if err != nil {
		response.Error(w, r, logger, apperrors.WrapInternal("failed to list snapshots", err))
		return
	}
	if snapshots == nil {
		snapshots = []universe.SnapshotInfo{}
	}

	response.Success(w, http.StatusOK, snapshots)
}

func (h *SnapshotsHandler) createSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "create_snapshot")

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, apperrors.Unauthorized("no user claims found in context"))
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, apperrors.WrapValidation("invalid JSON in request body", err))
		return
	}
	if req.Name == "" {
		response.Error(w, r, logger, apperrors.Validation("snapshot name is required"))
		return
	}

	var state *universe.State
	_ = h.sim.Read(func(u *universe.Universe) error {
		state = u.Snapshot()
		return nil
	})

	info, err := h.repo.SaveSnapshot(ctx, req.Name, state, claims.EditorID)
	if err != nil {
		response.Error(w, r, logger, apperrors.WrapInternal("failed to save snapshot", err))
		return
	}

	logger.Info("Snapshot created", "snapshot_id", info.ID, "name", info.Name, "editor_id", claims.EditorID)
	response.Success(w, http.StatusCreated, info)
}

func (h *SnapshotsHandler) getSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_snapshot")

	id, err := parseSnapshotID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	info, state, err := h.repo.GetSnapshot(ctx, id)
	if err != nil {
		response.Error(w, r, logger, apperrors.WrapInternal("failed to load snapshot", err))
		return
	}
	if info == nil {
		response.Error(w, r, logger, apperrors.NotFoundf("snapshot %d not found", id))
		return
	}

	response.Success(w, http.StatusOK, map[string]interface{}{
		"info":  info,
		"state": state,
	})
}

func (h *SnapshotsHandler) deleteSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "delete_snapshot")

	id, err := parseSnapshotID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	deleted, err := h.repo.DeleteSnapshot(ctx, id)
	if err != nil {
		response.Error(w, r, logger, apperrors.WrapInternal("failed to delete snapshot", err))
		return
	}
	if !deleted {
		response.Error(w, r, logger, apperrors.NotFoundf("snapshot %d not found", id))
		return
	}

	logger.Info("Snapshot deleted", "snapshot_id", id)
	response.Success(w, http.StatusOK, map[string]interface{}{"deleted": true})
}

// RestoreSnapshot swaps the live universe for a saved one.
func (h *SnapshotsHandler) RestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "restore_snapshot")

	id, err := parseSnapshotID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	info, state, err := h.repo.GetSnapshot(ctx, id)
	if err != nil {
		response.Error(w, r, logger, apperrors.WrapInternal("failed to load snapshot", err))
		return
	}
	if info == nil {
		response.Error(w, r, logger, apperrors.NotFoundf("snapshot %d not found", id))
		return
	}

	u, err := universe.FromState(state)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	h.sim.Reset(u)
	logger.Info("Snapshot restored", "snapshot_id", id, "name", info.Name, "body_count", u.BodyCount())

	response.Success(w, http.StatusOK, h.sim.Info())
}

func parseSnapshotID(r *http.Request) (int, error) {
	raw := r.PathValue("id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Validationf("invalid snapshot id %q", raw)
	}
	return id, nil
}
