package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	applog "finance/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type createdResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// writeJSON encodes v with the given status. v is marshalled before the
// header goes out so an unencodable value becomes a 500 instead of an
// empty body.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode JSON response",
			applog.FieldError, err,
			applog.FieldPath, r.URL.Path)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Error: "Failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Error: msg})
}

// writeServerError logs err and returns its raw text to the caller.
func writeServerError(w http.ResponseWriter, r *http.Request, op string, err error) {
	applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
		applog.FieldOperation, op,
		applog.FieldError, err,
		applog.FieldPath, r.URL.Path)
	writeError(w, r, http.StatusInternalServerError, err.Error())
}

// parseID parses a positive integer path segment.
func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
