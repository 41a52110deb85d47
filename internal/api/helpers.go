package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"revmatch/internal/util"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

type apiError struct {
	Code    string
	Message string
}

// toAPIError maps internal failures to user-safe responses. 5xx detail
// stays in the logs, not the response body.
func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "RM-API-4000"

	switch {
	case status >= 500:
		if errors.Is(err, util.ErrDatabaseNotFound) {
			return apiError{
				Code:    "RM-DB-5001",
				Message: "Paper database is missing. Run a corpus build and reload.",
			}
		}
		return apiError{
			Code:    "RM-API-5000",
			Message: "Internal server error. Please retry or check service logs.",
		}
	case status == http.StatusBadRequest:
		code = "RM-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusNotFound:
		code = "RM-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusMethodNotAllowed:
		code = "RM-API-4005"
		msg = "This endpoint does not support the requested method."
	case status == http.StatusConflict:
		code = "RM-API-4009"
		msg = "Operation conflicts with current state. Retry after checking status."
	case status == http.StatusUnprocessableEntity:
		code = "RM-API-4022"
		msg = "Failed to extract any text from this PDF."
	case status == http.StatusBadGateway:
		code = "RM-API-5020"
		msg = "Upstream embedding provider unavailable. Retry shortly."
	case status == http.StatusServiceUnavailable:
		code = "RM-API-5030"
		msg = "Batch orchestration is not configured on this deployment."
	}

	// For 4xx, keep user-safe validation context only.
	if status >= 400 && status < 500 && err != nil {
		low := strings.ToLower(err.Error())
		switch {
		case strings.Contains(low, "no pdf file provided"):
			msg = "No PDF file was provided."
		case strings.Contains(low, "invalid top_k"):
			msg = "top_k must be an integer."
		case strings.Contains(low, "invalid sort"):
			msg = "sort must be 'max' or 'mean'."
		case strings.Contains(low, "no active build"):
			msg = "No corpus build is currently running."
		case strings.Contains(low, "database is empty"):
			msg = "Paper database is empty. Run a corpus build first."
		}
	}

	return apiError{Code: code, Message: msg}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
