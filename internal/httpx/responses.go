package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the body of every failed API call. Error is a plain
// string so that browser scripts and the console client can show it as is.
type ErrorResponse struct {
	Error     string        `json:"error"`
	Code      string        `json:"code,omitempty"`
	Details   []ErrorDetail `json:"details,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func JSONSuccess(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

func JSONSuccessCreated(w http.ResponseWriter, v any) {
	JSON(w, http.StatusCreated, v)
}

func JSONSuccessNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func JSONError(w http.ResponseWriter, r *http.Request, statusCode int, code string, message string, details []ErrorDetail) {
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	if r != nil {
		resp.RequestID = RequestIDFrom(r)
	}
	JSON(w, statusCode, resp)
}
