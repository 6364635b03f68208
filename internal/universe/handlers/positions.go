package handlers

import (
	"log/slog"
	"net/http"

	"orbitarium-server/internal/geom"
	"orbitarium-server/internal/shared/response"
	"orbitarium-server/internal/universe"
)

type PositionsHandler struct {
	sim *universe.Service
}

func NewPositionsHandler(sim *universe.Service) *PositionsHandler {
	return &PositionsHandler{sim: sim}
}

// PositionsResponse pairs the batch position map with the time it was
// resolved at, so clients can correlate frames.
type PositionsResponse struct {
	Time      float64                   `json:"time"`
	Positions map[universe.ID]geom.Vec3 `json:"positions"`
}

func (h *PositionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "positions")

	var resp PositionsResponse
	err := h.sim.Read(func(u *universe.Universe) error {
		resp.Time = u.Time()
		resp.Positions = u.GetAllBodyPositions()
		return nil
	})
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	logger.Debug("Positions resolved", "body_count", len(resp.Positions))
	response.Success(w, http.StatusOK, resp)
}
