package http

import (
	"net/http"

	"dompet/internal/log"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settings.Get(r.Context(), userFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Data(newSettingsView(settings)).Write(w)
}

// handleUpdateSettings applies a partial update; omitted fields keep their
// current value.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := DecodeJSON(r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	settings, err := s.settings.Update(r.Context(), userFrom(r.Context()), req.update())
	if err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	NewJSONResponse().Data(newSettingsView(settings)).Write(w)
}
