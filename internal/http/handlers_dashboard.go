package http

import (
	"net/http"

	"dompet/internal/log"
)

// handleDashboard renders the overview from cached period statistics.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboard.Build(r.Context(), userFrom(r.Context()), s.now())
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Data(newDashboardView(d)).Write(w)
}
