package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"onefifth/internal/core"
	"onefifth/internal/storage"
)

// transactionResponse is the wire shape of a single transaction.
type transactionResponse struct {
	ID     int64  `json:"id"`
	Text   string `json:"text"`
	Amount string `json:"amount"`
	Cents  int64  `json:"amount_cents"`
	Date   string `json:"date"`
}

type summaryResponse struct {
	Balance string    `json:"balance"`
	Income  string    `json:"income"`
	Expense string    `json:"expense"`
	Splits  [3]string `json:"splits"`
}

type dayGroupResponse struct {
	Date         string                `json:"date"`
	Total        string                `json:"total"`
	Transactions []transactionResponse `json:"transactions"`
}

type settingsResponse struct {
	P1   float64 `json:"p1"`
	P2   float64 `json:"p2"`
	P3   float64 `json:"p3"`
	Dark bool    `json:"dark"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:     t.ID,
		Text:   t.Text,
		Amount: t.Amount.String(),
		Cents:  t.Amount.Cents,
		Date:   t.Date.Key(),
	}
}

func toTransactionResponses(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	return out
}

func toSummaryResponse(s core.Summary) summaryResponse {
	r := summaryResponse{
		Balance: s.Balance.String(),
		Income:  s.Income.String(),
		Expense: s.Expense.String(),
	}
	for i, split := range s.Splits {
		r.Splits[i] = formatSplit(split)
	}
	return r
}

func toHistoryResponse(groups []core.DayGroup) []dayGroupResponse {
	out := make([]dayGroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, dayGroupResponse{
			Date:         g.Date.Key(),
			Total:        g.Total.String(),
			Transactions: toTransactionResponses(g.Transactions),
		})
	}
	return out
}

// formatSplit rounds a computed split amount for display.
func formatSplit(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func toSettingsResponse(s core.Settings) settingsResponse {
	return settingsResponse{P1: s.P1, P2: s.P2, P3: s.P3, Dark: s.Dark}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func errorJSON(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorResponse{Error: kind, Message: message})
}

// respondError maps domain and storage errors onto HTTP statuses.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBadRequest):
		errorJSON(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrFutureDate),
		errors.Is(err, core.ErrBadPercentages):
		errorJSON(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
	case errors.Is(err, storage.ErrDuplicateKey):
		errorJSON(w, http.StatusConflict, "duplicate_key", err.Error())
	case errors.Is(err, storage.ErrNotFound):
		errorJSON(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, storage.ErrReadFailed):
		errorJSON(w, http.StatusInternalServerError, "storage_read_error", "failed to read from storage")
	case errors.Is(err, storage.ErrWriteFailed):
		errorJSON(w, http.StatusInternalServerError, "storage_write_error", "failed to write to storage")
	default:
		errorJSON(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
