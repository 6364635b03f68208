package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	apperrors "orbitarium-server/internal/shared/errors"
	"orbitarium-server/internal/shared/response"
	"orbitarium-server/internal/universe"
)

// UniverseHandler serves simulation-wide operations: status, settings,
// manual stepping and reset.
type UniverseHandler struct {
	sim *universe.Service

	// newUniverse rebuilds the configured preset for reset.
	newUniverse func() (*universe.Universe, error)
}

func NewUniverseHandler(sim *universe.Service, newUniverse func() (*universe.Universe, error)) *UniverseHandler {
	return &UniverseHandler{sim: sim, newUniverse: newUniverse}
}

func (h *UniverseHandler) Info(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, h.sim.Info())
}

func (h *UniverseHandler) Settings(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "universe_settings")

	var settings universe.Settings
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		response.Error(w, r, logger, apperrors.WrapValidation("invalid JSON in request body", err))
		return
	}

	if err := h.sim.ApplySettings(settings); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, h.sim.Info())
}

func (h *UniverseHandler) Tick(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "universe_tick")

	var req struct {
		DT float64 `json:"dt"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, apperrors.WrapValidation("invalid JSON in request body", err))
		return
	}

	h.sim.Step(req.DT)
	logger.Debug("Manual tick applied", "dt", req.DT)

	response.Success(w, http.StatusOK, h.sim.Info())
}

func (h *UniverseHandler) Reset(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "universe_reset")

	u, err := h.newUniverse()
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	h.sim.Reset(u)
	logger.Info("Universe reset to preset", "body_count", u.BodyCount())

	response.Success(w, http.StatusOK, h.sim.Info())
}
