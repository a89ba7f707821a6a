package http

import (
	"net/http"

	"dompet/internal/log"
	"dompet/internal/period"
)

// handleListTransactions returns a page of the active period's live
// transactions, newest first.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r.Context())
	page := ParsePageParams(r.URL.Query(), period.DefaultArchivePageSize)

	_, txs, err := s.transactions.ListActive(r.Context(), userID, page.CorePage(), s.now())
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}

	NewJSONResponse().Data(newTransactionViews(txs)).Page(page.Meta()).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r.Context())

	var req transactionRequest
	if err := DecodeJSON(r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	in, err := req.input()
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}

	t, err := s.transactions.Create(r.Context(), userID, in, s.now())
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}

	NewJSONResponse().
		Status(http.StatusCreated).
		Data(newTransactionView(t)).
		Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r.Context())
	id, err := ParsePathID(r, "id")
	if err != nil {
		NotFoundError("transaction not found").Write(w)
		return
	}

	var req transactionRequest
	if err := DecodeJSON(r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	in, err := req.input()
	if err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}

	t, err := s.transactions.Update(r.Context(), userID, id, in, s.now())
	if err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}

	NewJSONResponse().Data(newTransactionView(t)).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r.Context())
	id, err := ParsePathID(r, "id")
	if err != nil {
		NotFoundError("transaction not found").Write(w)
		return
	}

	if err := s.transactions.Delete(r.Context(), userID, id); err != nil {
		s.writeError(w, r, log.OpDelete, err)
		return
	}

	NewJSONResponse().Status(http.StatusNoContent).Empty().Write(w)
}
