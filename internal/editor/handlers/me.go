package handlers

import (
	"log/slog"
	"net/http"

	"orbitarium-server/internal/middleware"
	apperrors "orbitarium-server/internal/shared/errors"
	"orbitarium-server/internal/shared/response"
)

type MeHandler struct{}

func NewMeHandler() *MeHandler {
	return &MeHandler{}
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "me")

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, apperrors.Unauthorized("no user claims found in context"))
		return
	}

	resp := map[string]interface{}{
		"editor_id": claims.EditorID,
		"username":  claims.Username,
		"email":     claims.Email,
	}

	response.Success(w, http.StatusOK, resp)
}
