package http

import (
	"net/http"

	"smartbills/internal/services"
)

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	subs, err := s.subscriptions.List(r.Context(), userID(r.Context()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="subscriptions.csv"`)
	if err := services.WriteCSV(w, subs); err != nil {
		writeDomainError(w, r, err)
	}
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	today, ok := requestToday(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "today must be YYYY-MM-DD")
		return
	}

	subs, err := s.subscriptions.List(r.Context(), userID(r.Context()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := services.WriteReport(w, subs, today); err != nil {
		writeDomainError(w, r, err)
	}
}
