package http

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strings"

	"finance/internal/core"

	"github.com/shopspring/decimal"
)

// maxBodyBytes caps POST bodies; a transaction is a few hundred bytes.
const maxBodyBytes = 64 << 10

var (
	errInvalidBody  = &core.ValidationError{Message: "Invalid JSON body"}
	errAmountNotNum = &core.ValidationError{Field: "amount", Message: "Amount must be a number"}
)

// transactionRequest is the POST body. Every field is optional at decode
// time; presence is checked by toTransaction.
type transactionRequest struct {
	Amount      *amountField `json:"amount"`
	Category    *string      `json:"category"`
	Type        *string      `json:"type"`
	Date        *string      `json:"date"`
	Description *string      `json:"description"`
}

type amountKind int

const (
	amountNumber amountKind = iota
	amountString
	amountOther
)

// amountField accepts a JSON number or a numeric string.
type amountField struct {
	kind  amountKind
	text  string
	empty bool
}

func (a *amountField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountField{kind: amountString, text: s, empty: s == ""}
	case len(b) > 0 && (b[0] == '-' || (b[0] >= '0' && b[0] <= '9')):
		d, err := decimal.NewFromString(string(b))
		if err != nil {
			return err
		}
		*a = amountField{kind: amountNumber, text: string(b), empty: d.IsZero()}
	default:
		var v any
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*a = amountField{kind: amountOther, text: string(b), empty: isFalsy(v)}
	}
	return nil
}

// missing follows the dashboard's historical truthiness test: null, "" and
// the number 0 all count as absent.
func (a *amountField) missing() bool {
	return a == nil || a.empty
}

// Float parses the amount. Non-numeric strings, booleans and containers fail.
func (a *amountField) Float() (float64, error) {
	if a.kind == amountOther {
		return 0, errAmountNotNum
	}
	d, err := decimal.NewFromString(strings.TrimSpace(a.text))
	if err != nil {
		return 0, errAmountNotNum
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, errAmountNotNum
	}
	return f, nil
}

func isFalsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	}
	return false
}

func missingString(s *string) bool {
	return s == nil || *s == ""
}

// decodeTransactionRequest reads a JSON object from the request body.
func decodeTransactionRequest(r *http.Request) (*transactionRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, errInvalidBody
	}
	if len(body) > maxBodyBytes {
		return nil, &core.ValidationError{Message: "Request body too large"}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errInvalidBody
	}

	var req transactionRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, errInvalidBody
	}
	return &req, nil
}

// toTransaction validates the request and builds the domain record. Required
// fields are checked in order before the type, and the type before the amount
// format.
func (req *transactionRequest) toTransaction() (core.Transaction, error) {
	required := []struct {
		name    string
		missing bool
	}{
		{"amount", req.Amount.missing()},
		{"category", missingString(req.Category)},
		{"type", missingString(req.Type)},
		{"date", missingString(req.Date)},
	}
	for _, f := range required {
		if f.missing {
			return core.Transaction{}, core.MissingFieldError(f.name)
		}
	}

	txType, err := core.ParseType(*req.Type)
	if err != nil {
		return core.Transaction{}, core.InvalidTypeError()
	}

	amount, err := req.Amount.Float()
	if err != nil {
		return core.Transaction{}, err
	}

	tx := core.Transaction{
		Amount:   amount,
		Category: *req.Category,
		Type:     txType,
		Date:     *req.Date,
	}
	if req.Description != nil {
		tx.Description = *req.Description
	}
	return tx, nil
}

// parseTransaction decodes and validates a POST body in one step.
func parseTransaction(r *http.Request) (core.Transaction, error) {
	req, err := decodeTransactionRequest(r)
	if err != nil {
		return core.Transaction{}, err
	}
	return req.toTransaction()
}

// parseDateRange reads the optional start_date/end_date query parameters.
func parseDateRange(r *http.Request) core.DateRange {
	q := r.URL.Query()
	return core.DateRange{
		From: strings.TrimSpace(q.Get("start_date")),
		To:   strings.TrimSpace(q.Get("end_date")),
	}
}
