package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"orbitarium-server/internal/render"
	"orbitarium-server/internal/session"
	apperrors "orbitarium-server/internal/shared/errors"
	"orbitarium-server/internal/shared/response"
	"orbitarium-server/internal/universe"
)

const defaultLineThickness = 1.0

// SceneHandler builds one frame's renderable scene for a session: LOD
// bucketed body instances plus trajectory ribbons, all camera-relative.
type SceneHandler struct {
	sessions *session.Service
	sim      *universe.Service
}

func NewSceneHandler(sessions *session.Service, sim *universe.Service) *SceneHandler {
	return &SceneHandler{sessions: sessions, sim: sim}
}

func (h *SceneHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "scene")

	sess, err := h.sessions.Get(ctx, r.PathValue("id"))
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	var req struct {
		Thickness float32 `json:"thickness,omitempty"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		response.Error(w, r, logger, apperrors.WrapValidation("invalid JSON in request body", err))
		return
	}
	thickness := req.Thickness
	if thickness <= 0 {
		thickness = defaultLineThickness
	}

	var scene *render.Scene
	err = h.sim.Read(func(u *universe.Universe) error {
		positions := u.GetAllBodyPositions()
		camera := sess.CameraPosition(positions)
		scene = render.BuildScene(u, positions, camera, thickness)
		return nil
	})
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	logger.Debug("Scene built",
		"session_id", sess.ID,
		"trajectory_count", len(scene.Trajectories))
	response.Success(w, http.StatusOK, scene)
}
