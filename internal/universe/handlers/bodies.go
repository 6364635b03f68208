package handlers

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"orbitarium-server/internal/geom"
	"orbitarium-server/internal/orbit"
	apperrors "orbitarium-server/internal/shared/errors"
	"orbitarium-server/internal/shared/response"
	"orbitarium-server/internal/universe"
)

type BodiesHandler struct {
	sim *universe.Service
}

func NewBodiesHandler(sim *universe.Service) *BodiesHandler {
	return &BodiesHandler{sim: sim}
}

// BodyResponse is the client-facing view of one body: the stored properties
// plus its resolved position and sphere of influence at the current time.
// SOIRadius is omitted when unbounded, since JSON has no +Inf.
type BodyResponse struct {
	ID         universe.ID          `json:"id"`
	Name       string               `json:"name"`
	Mass       float64              `json:"mass"`
	Radius     float64              `json:"radius"`
	Color      universe.Color       `json:"color"`
	Parent     *universe.ID         `json:"parent,omitempty"`
	Satellites []universe.ID        `json:"satellites"`
	Orbit      *universe.OrbitState `json:"orbit,omitempty"`
	Position   geom.Vec3            `json:"position"`
	SOIRadius  *float64             `json:"soi_radius,omitempty"`
}

func newBodyResponse(u *universe.Universe, id universe.ID, pos geom.Vec3) BodyResponse {
	wrapper := u.GetBody(id)

	resp := BodyResponse{
		ID:         id,
		Name:       wrapper.Body.Name,
		Mass:       wrapper.Body.Mass,
		Radius:     wrapper.Body.Radius,
		Color:      wrapper.Body.Color,
		Parent:     wrapper.Relations.Parent,
		Satellites: append([]universe.ID{}, wrapper.Relations.Satellites...),
		Orbit:      universe.NewOrbitState(wrapper.Body.Orbit),
		Position:   pos,
	}

	if soi, err := u.GetSOIRadius(id); err == nil && !math.IsInf(soi, 1) {
		resp.SOIRadius = &soi
	}
	return resp
}

func (h *BodiesHandler) ListBodies(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_bodies")
	logger.Debug("Body list requested")

	bodies := []BodyResponse{}
	err := h.sim.Read(func(u *universe.Universe) error {
		positions := u.GetAllBodyPositions()
		for _, id := range u.SortedIDs() {
			bodies = append(bodies, newBodyResponse(u, id, positions[id]))
		}
		return nil
	})
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	logger.Debug("Body list completed", "body_count", len(bodies))
	response.Success(w, http.StatusOK, bodies)
}

type createBodyRequest struct {
	Name   string               `json:"name"`
	Mass   float64              `json:"mass"`
	Radius float64              `json:"radius"`
	Color  universe.Color       `json:"color"`
	Parent *universe.ID         `json:"parent,omitempty"`
	Orbit  *universe.OrbitState `json:"orbit,omitempty"`
}

func (h *BodiesHandler) CreateBody(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "create_body")

	var req createBodyRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, apperrors.WrapValidation("invalid JSON in request body", err))
		return
	}
	if req.Name == "" {
		response.Error(w, r, logger, apperrors.Validation("body name is required"))
		return
	}
	if req.Mass <= 0 {
		response.Error(w, r, logger, apperrors.Validation("body mass must be positive"))
		return
	}

	var resp BodyResponse
	err := h.sim.Write(func(u *universe.Universe) error {
		body := &universe.Body{
			Name:   req.Name,
			Mass:   req.Mass,
			Radius: req.Radius,
			Color:  req.Color,
			Orbit:  req.Orbit.ToOrbit(),
		}
		id, err := u.AddBody(body, req.Parent)
		if err != nil {
			return err
		}
		pos, _ := u.GetBodyPosition(id)
		resp = newBodyResponse(u, id, pos)
		return nil
	})
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	logger.Info("Body created", "body_id", resp.ID, "name", resp.Name)
	response.Success(w, http.StatusCreated, resp)
}

func (h *BodiesHandler) GetBody(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_body")

	id, err := parseBodyID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	var resp BodyResponse
	err = h.sim.Read(func(u *universe.Universe) error {
		if u.GetBody(id) == nil {
			return apperrors.NotFoundf("body %d not found", id)
		}
		pos, _ := u.GetBodyPosition(id)
		resp = newBodyResponse(u, id, pos)
		return nil
	})
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, resp)
}

type updateBodyRequest struct {
	Name   *string              `json:"name,omitempty"`
	Mass   *float64             `json:"mass,omitempty"`
	Radius *float64             `json:"radius,omitempty"`
	Color  *universe.Color      `json:"color,omitempty"`
	Orbit  *universe.OrbitState `json:"orbit,omitempty"`
}

func (h *BodiesHandler) UpdateBody(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "update_body")

	id, err := parseBodyID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	var req updateBodyRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, apperrors.WrapValidation("invalid JSON in request body", err))
		return
	}
	if req.Mass != nil && *req.Mass <= 0 {
		response.Error(w, r, logger, apperrors.Validation("body mass must be positive"))
		return
	}

	policy := h.sim.MuPolicy()

	var resp BodyResponse
	err = h.sim.Write(func(u *universe.Universe) error {
		wrapper := u.GetBody(id)
		if wrapper == nil {
			return apperrors.NotFoundf("body %d not found", id)
		}

		if req.Name != nil {
			wrapper.Body.Name = *req.Name
		}
		if req.Radius != nil {
			wrapper.Body.Radius = *req.Radius
		}
		if req.Color != nil {
			wrapper.Body.Color = *req.Color
		}
		if req.Orbit != nil {
			// Replacing elements rebinds mu against the parent under
			// KeepElements: the client's typed elements win, mu is derived.
			wrapper.Body.Orbit = req.Orbit.ToOrbit()
			if wrapper.Relations.Parent != nil {
				if parent := u.GetBody(*wrapper.Relations.Parent); parent != nil {
					wrapper.Body.Orbit.SetGravitationalParameter(
						u.G()*parent.Body.Mass, orbit.KeepElements())
				}
			}
		}
		if req.Mass != nil {
			wrapper.Body.Mass = *req.Mass
			// A mass edit changes mu for the direct satellites only.
			if err := u.UpdateChildrenGravitationalParameters(id, policy); err != nil {
				return err
			}
		}

		pos, _ := u.GetBodyPosition(id)
		resp = newBodyResponse(u, id, pos)
		return nil
	})
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	logger.Info("Body updated", "body_id", id)
	response.Success(w, http.StatusOK, resp)
}

func (h *BodiesHandler) DeleteBody(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "delete_body")

	id, err := parseBodyID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	var removedIDs []universe.ID
	err = h.sim.Write(func(u *universe.Universe) error {
		if u.GetBody(id) == nil {
			return apperrors.NotFoundf("body %d not found", id)
		}
		for _, removed := range u.RemoveBody(id) {
			removedIDs = append(removedIDs, removed.ID)
		}
		return nil
	})
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	logger.Info("Body removed", "body_id", id, "removed_count", len(removedIDs))
	response.Success(w, http.StatusOK, map[string]interface{}{
		"removed": removedIDs,
	})
}

func (h *BodiesHandler) DuplicateBody(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "duplicate_body")

	id, err := parseBodyID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	var resp BodyResponse
	err = h.sim.Write(func(u *universe.Universe) error {
		newID, err := u.DuplicateBody(id)
		if err != nil {
			return err
		}
		pos, _ := u.GetBodyPosition(newID)
		resp = newBodyResponse(u, newID, pos)
		return nil
	})
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	logger.Info("Body duplicated", "source_id", id, "new_id", resp.ID)
	response.Success(w, http.StatusCreated, resp)
}

func (h *BodiesHandler) MoveBody(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "move_body")

	id, err := parseBodyID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	var req struct {
		Parent *universe.ID `json:"parent"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, apperrors.WrapValidation("invalid JSON in request body", err))
		return
	}

	policy := h.sim.MuPolicy()

	var resp BodyResponse
	err = h.sim.Write(func(u *universe.Universe) error {
		if err := u.MoveBody(id, req.Parent, policy); err != nil {
			return err
		}
		pos, _ := u.GetBodyPosition(id)
		resp = newBodyResponse(u, id, pos)
		return nil
	})
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	logger.Info("Body moved", "body_id", id)
	response.Success(w, http.StatusOK, resp)
}

func (h *BodiesHandler) ReorderBody(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "reorder_body")

	id, err := parseBodyID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	var req struct {
		Delta int `json:"delta"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, apperrors.WrapValidation("invalid JSON in request body", err))
		return
	}
	if req.Delta != 1 && req.Delta != -1 {
		response.Error(w, r, logger, apperrors.Validation("delta must be 1 or -1"))
		return
	}

	err = h.sim.Write(func(u *universe.Universe) error {
		return u.ReorderBody(id, req.Delta)
	})
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	logger.Debug("Body reordered", "body_id", id, "delta", req.Delta)
	response.Success(w, http.StatusOK, map[string]interface{}{
		"id":    id,
		"delta": req.Delta,
	})
}

func parseBodyID(r *http.Request) (universe.ID, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperrors.Validationf("invalid body id %q", raw)
	}
	return universe.ID(id), nil
}
