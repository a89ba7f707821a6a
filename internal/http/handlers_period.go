package http

import (
	"errors"
	"net/http"
	"strings"

	"dompet/internal/core"
	"dompet/internal/log"
	"dompet/internal/period"
)

// handleActivePeriod returns the active period, creating it when the user
// has none, with a page of its live transactions.
func (s *Server) handleActivePeriod(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r.Context())
	page := ParsePageParams(r.URL.Query(), period.DefaultArchivePageSize)

	p, txs, err := s.transactions.ListActive(r.Context(), userID, page.CorePage(), s.now())
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}

	NewJSONResponse().
		Data(activePeriodView{Period: newPeriodView(p), Transactions: newTransactionViews(txs)}).
		Page(page.Meta()).
		Write(w)
}

// handlePeriodHistory lists archived periods, most recent first.
func (s *Server) handlePeriodHistory(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r.Context())
	page := ParsePageParams(r.URL.Query(), period.DefaultHistoryPageSize)

	periods, err := s.periods.GetPeriodHistory(r.Context(), userID, page.CorePage())
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}

	NewJSONResponse().Data(newPeriodViews(periods)).Page(page.Meta()).Write(w)
}

// handlePeriodDetail returns one of the user's periods with a page of its
// archived transactions.
func (s *Server) handlePeriodDetail(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r.Context())
	periodID, err := ParsePathID(r, "id")
	if err != nil {
		NotFoundError("period not found").Write(w)
		return
	}
	page := ParsePageParams(r.URL.Query(), period.DefaultArchivePageSize)

	detail, err := s.periods.PeriodDetail(r.Context(), userID, periodID, page.CorePage())
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}

	NewJSONResponse().
		Data(periodDetailView{
			Period:       newPeriodView(detail.Period),
			Transactions: newArchivedTransactionViews(detail.Transactions),
		}).
		Page(page.Meta()).
		Write(w)
}

// handleResetPeriod archives the active period and opens a new one starting
// at start_date (today when omitted).
func (s *Server) handleResetPeriod(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r.Context())
	now := s.now()

	// The body is optional; an empty one starts the new period today.
	var req resetRequest
	if err := DecodeJSON(r, &req); err != nil && !errors.Is(err, ErrEmptyBody) {
		BadRequestError(err.Error()).Write(w)
		return
	}

	start := core.DateOf(now)
	if strings.TrimSpace(req.StartDate) != "" {
		d, err := core.ParseDate(req.StartDate)
		if err != nil {
			s.writeError(w, r, log.OpReset, err)
			return
		}
		start = d
	}

	res, err := s.periods.ResetPeriod(r.Context(), userID, start, now)
	if err != nil {
		s.writeError(w, r, log.OpReset, err)
		return
	}

	NewJSONResponse().Data(newResetView(res)).Write(w)
}
