package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shaharia-lab/zephyr/internal/service"
)

// handleEmitEvent dispatches an event to its listeners. Sync emissions (the
// default) block and return per-listener results; async emissions return 202
// immediately and their outcomes land in the delivery history.
func (s *Server) handleEmitEvent(w http.ResponseWriter, r *http.Request) {
	var req service.EmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}

	result, err := s.dispatchSvc.Emit(r.Context(), req)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
			return
		}
		s.logger.Error("emit failed", "event_type", req.Type, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to emit event")
		return
	}

	if result.Mode == service.ModeAsync {
		writeJSON(w, http.StatusAccepted, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
