package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"orbitarium-server/internal/geom"
	"orbitarium-server/internal/session"
	apperrors "orbitarium-server/internal/shared/errors"
	"orbitarium-server/internal/shared/response"
	"orbitarium-server/internal/universe"
)

// SessionsHandler serves viewer sessions: creation, lookup and focus
// switching. A session's focus determines the camera frame the scene
// endpoint renders against.
type SessionsHandler struct {
	sessions *session.Service
	sim      *universe.Service
}

func NewSessionsHandler(sessions *session.Service, sim *universe.Service) *SessionsHandler {
	return &SessionsHandler{sessions: sessions, sim: sim}
}

func (h *SessionsHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "create_session")

	var req struct {
		Focus *universe.ID `json:"focus,omitempty"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		response.Error(w, r, logger, apperrors.WrapValidation("invalid JSON in request body", err))
		return
	}

	var focus universe.ID
	err := h.sim.Read(func(u *universe.Universe) error {
		if req.Focus != nil {
			if u.GetBody(*req.Focus) == nil {
				return apperrors.NotFoundf("body %d not found", *req.Focus)
			}
			focus = *req.Focus
			return nil
		}
		// Default focus is the first root, typically the primary star.
		if roots := u.Roots(); len(roots) > 0 {
			focus = roots[0]
		}
		return nil
	})
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	sess, err := h.sessions.Create(ctx, focus)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	logger.Info("Session created", "session_id", sess.ID, "focused_body", sess.FocusedBody)
	response.Success(w, http.StatusCreated, sess)
}

func (h *SessionsHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_session")

	sess, err := h.sessions.Get(ctx, r.PathValue("id"))
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, sess)
}

// SwitchFocus re-targets the session's camera. The target is a body id, or
// "next"/"prev" to cycle the hierarchy in depth-first order. The camera does
// not move: the offset is re-based against the new focus.
func (h *SessionsHandler) SwitchFocus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "switch_focus")

	sess, err := h.sessions.Get(ctx, r.PathValue("id"))
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	var req struct {
		Target string `json:"target"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, apperrors.WrapValidation("invalid JSON in request body", err))
		return
	}

	err = h.sim.Read(func(u *universe.Universe) error {
		newFocus, err := resolveFocusTarget(u, sess.FocusedBody, req.Target)
		if err != nil {
			return err
		}
		sess.SwitchFocus(newFocus, u.GetAllBodyPositions())
		return nil
	})
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if err := h.sessions.Save(ctx, sess); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	logger.Debug("Focus switched", "session_id", sess.ID, "focused_body", sess.FocusedBody)
	response.Success(w, http.StatusOK, sess)
}

func resolveFocusTarget(u *universe.Universe, current universe.ID, target string) (universe.ID, error) {
	switch target {
	case "":
		return 0, apperrors.Validation("focus target is required")
	case "next":
		if id, ok := u.NextBodyID(current); ok {
			return id, nil
		}
		return 0, apperrors.NotFoundf("universe has no bodies to focus")
	case "prev":
		if id, ok := u.PrevBodyID(current); ok {
			return id, nil
		}
		return 0, apperrors.NotFoundf("universe has no bodies to focus")
	default:
		raw, err := strconv.ParseUint(target, 10, 64)
		if err != nil {
			return 0, apperrors.Validationf("invalid focus target %q", target)
		}
		id := universe.ID(raw)
		if u.GetBody(id) == nil {
			return 0, apperrors.NotFoundf("body %d not found", id)
		}
		return id, nil
	}
}

// MoveCamera adjusts the session's offset from the focused body.
func (h *SessionsHandler) MoveCamera(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "move_camera")

	sess, err := h.sessions.Get(ctx, r.PathValue("id"))
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	var req struct {
		Offset geom.Vec3 `json:"offset"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, apperrors.WrapValidation("invalid JSON in request body", err))
		return
	}
	if !req.Offset.IsFinite() {
		response.Error(w, r, logger, apperrors.Validation("offset must be finite"))
		return
	}

	sess.FocusOffset = req.Offset
	if err := h.sessions.Save(ctx, sess); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, sess)
}
