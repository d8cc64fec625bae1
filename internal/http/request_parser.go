package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"onefifth/internal/core"
)

// errBadRequest marks payloads that fail before domain validation.
var errBadRequest = errors.New("bad request")

// maxBodyBytes caps request bodies; ledger payloads are tiny.
const maxBodyBytes = 16 << 10

// transactionRequest is the wire shape of a create/edit payload. The
// amount arrives as a string so "12,34" and "-20" survive untouched
// until ParseAmount normalizes them.
type transactionRequest struct {
	Text   string `json:"text"`
	Amount string `json:"amount"`
	Date   string `json:"date"`
}

type percentagesRequest struct {
	P1 int `json:"p1"`
	P2 int `json:"p2"`
	P3 int `json:"p3"`
}

type displayModeRequest struct {
	Dark bool `json:"dark"`
}

func decodeJSON(r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// parseTransactionRequest decodes and converts a payload to domain
// values. The date is optional; an empty string means "today" and is
// resolved by the service.
func parseTransactionRequest(r *http.Request) (text string, amount core.Money, date core.Date, err error) {
	var req transactionRequest
	if err = decodeJSON(r, &req); err != nil {
		return "", core.Money{}, core.Date{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}

	amount, err = core.ParseAmount(req.Amount)
	if err != nil {
		return "", core.Money{}, core.Date{}, err
	}

	if strings.TrimSpace(req.Date) != "" {
		date, err = core.ParseDate(req.Date)
		if err != nil {
			return "", core.Money{}, core.Date{}, fmt.Errorf("%w: %v", errBadRequest, err)
		}
	}
	return req.Text, amount, date, nil
}

// parseTransactionID extracts the trailing id from /api/transactions/{id}.
func parseTransactionID(path string) (int64, error) {
	raw := strings.TrimPrefix(path, "/api/transactions/")
	if raw == "" || strings.Contains(raw, "/") {
		return 0, fmt.Errorf("invalid transaction id %q", raw)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid transaction id %q", raw)
	}
	return id, nil
}
