package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error     string `json:"error"`
	Remaining *int64 `json:"remaining,omitempty"`
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorResponse{Error: msg})
}

// ErrorWithRemaining reports a rejected donation together with the exact
// headroom still open, so the client can retry with a valid amount.
func ErrorWithRemaining(w http.ResponseWriter, status int, msg string, remaining int64) {
	JSON(w, status, errorResponse{Error: msg, Remaining: &remaining})
}
