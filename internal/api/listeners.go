package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shaharia-lab/zephyr/internal/service"
)

func (s *Server) handleListListeners(w http.ResponseWriter, r *http.Request) {
	listeners, err := s.dispatchSvc.ListListeners(r.Context())
	if err != nil {
		s.logger.Error("list listeners failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list listeners")
		return
	}
	writeJSON(w, http.StatusOK, listeners)
}

func (s *Server) handleRegisterListener(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}

	info, err := s.dispatchSvc.RegisterListener(r.Context(), req)
	if err != nil {
		var ve *service.ValidationError
		var ce *service.ConflictError
		switch {
		case errors.As(err, &ve):
			writeError(w, http.StatusBadRequest, ve.Error())
		case errors.As(err, &ce):
			writeError(w, http.StatusConflict, ce.Error())
		default:
			s.logger.Error("register listener failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to register listener")
		}
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

func (s *Server) handleUnregisterListener(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.dispatchSvc.UnregisterListener(r.Context(), id); err != nil {
		var nfe *service.NotFoundError
		if errors.As(err, &nfe) {
			writeError(w, http.StatusNotFound, nfe.Error())
			return
		}
		s.logger.Error("unregister listener failed", "listener_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to unregister listener")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
