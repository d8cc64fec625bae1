package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"onefifth/internal/core"
)

const (
	summaryCacheKey = "summary"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		errorJSON(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	data := struct {
		Dark bool
	}{Dark: s.ledger.Settings().Dark}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "failed to render index", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.addTransaction(w, r)
	default:
		errorJSON(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.LoadAll(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list transactions", "error", err)
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(txs))
}

func (s *Server) addTransaction(w http.ResponseWriter, r *http.Request) {
	text, amount, date, err := parseTransactionRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	t, err := s.ledger.Add(r.Context(), text, amount, date)
	if err != nil {
		respondError(w, err)
		return
	}

	s.invalidateViews()
	writeJSON(w, http.StatusCreated, toTransactionResponse(t))
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseTransactionID(r.URL.Path)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getTransaction(w, r, id)
	case http.MethodPut:
		s.editTransaction(w, r, id)
	case http.MethodDelete:
		s.removeTransaction(w, r, id)
	default:
		errorJSON(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request, id int64) {
	t, err := s.ledger.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) editTransaction(w http.ResponseWriter, r *http.Request, id int64) {
	text, amount, date, err := parseTransactionRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	t, err := s.ledger.Edit(r.Context(), id, text, amount, date)
	if err != nil {
		respondError(w, err)
		return
	}

	s.invalidateViews()
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) removeTransaction(w http.ResponseWriter, r *http.Request, id int64) {
	if err := s.ledger.Remove(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	s.invalidateViews()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errorJSON(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	if summary, ok := s.summaryCache.Get(summaryCacheKey); ok {
		writeJSON(w, http.StatusOK, toSummaryResponse(summary))
		return
	}

	summary, err := s.ledger.Aggregates(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to compute summary", "error", err)
		respondError(w, err)
		return
	}

	s.summaryCache.Set(summaryCacheKey, summary)
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errorJSON(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	filter := core.ParseFilter(r.URL.Query().Get("filter"))
	key := fmt.Sprintf("history:%d", filter)

	if groups, ok := s.historyCache.Get(key); ok {
		writeJSON(w, http.StatusOK, toHistoryResponse(groups))
		return
	}

	groups, err := s.ledger.HistoryGroups(r.Context(), filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to group history", "error", err)
		respondError(w, err)
		return
	}

	s.historyCache.Set(key, groups)
	writeJSON(w, http.StatusOK, toHistoryResponse(groups))
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, toSettingsResponse(s.ledger.Settings()))
	case http.MethodPut:
		s.putPercentages(w, r)
	default:
		errorJSON(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (s *Server) putPercentages(w http.ResponseWriter, r *http.Request) {
	var req percentagesRequest
	if err := decodeJSON(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	if err := s.ledger.SetPercentages(r.Context(), req.P1, req.P2, req.P3); err != nil {
		respondError(w, err)
		return
	}

	// Splits depend on the percentages, so the memoized summary is stale.
	s.summaryCache.Purge()
	writeJSON(w, http.StatusOK, toSettingsResponse(s.ledger.Settings()))
}

func (s *Server) handleDisplayMode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		errorJSON(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	var req displayModeRequest
	if err := decodeJSON(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	s.ledger.SetDisplayMode(r.Context(), req.Dark)
	writeJSON(w, http.StatusOK, toSettingsResponse(s.ledger.Settings()))
}
