package webserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType categorizes request-level failures. Per-file read failures are
// never reported here; those travel inside the outcome stream.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeUpload     ErrorType = "upload"
	ErrorTypeInternal   ErrorType = "internal"
)

// ErrorResponse is the structured body of a non-2xx answer.
type ErrorResponse struct {
	Type    ErrorType `json:"type"`
	Code    string    `json:"code"`
	Title   string    `json:"title"`
	Details string    `json:"details"`
}

// CategorizeError sorts a request failure into the response taxonomy.
func CategorizeError(err error) ErrorResponse {
	if err == nil {
		return ErrorResponse{
			Type:    ErrorTypeInternal,
			Code:    "unknown_error",
			Title:   "Request failed",
			Details: "No error details available",
		}
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "format") || strings.Contains(lower, "charset"):
		return ErrorResponse{
			Type:    ErrorTypeValidation,
			Code:    "invalid_format",
			Title:   "Unsupported output format",
			Details: msg,
		}
	case strings.Contains(lower, "filename") || strings.Contains(lower, "too large"):
		return ErrorResponse{
			Type:    ErrorTypeValidation,
			Code:    "invalid_upload",
			Title:   "Upload rejected",
			Details: msg,
		}
	case strings.Contains(lower, "form") || strings.Contains(lower, "multipart"):
		return ErrorResponse{
			Type:    ErrorTypeUpload,
			Code:    "upload_form_error",
			Title:   "Could not parse upload",
			Details: msg,
		}
	default:
		return ErrorResponse{
			Type:    ErrorTypeInternal,
			Code:    "processing_error",
			Title:   "Request failed",
			Details: msg,
		}
	}
}

// WriteErrorResponse writes a structured error response as JSON.
func WriteErrorResponse(w http.ResponseWriter, err error, statusCode int) {
	resp := CategorizeError(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if jsonErr := json.NewEncoder(w).Encode(resp); jsonErr != nil {
		// Fallback to plain text if JSON encoding fails
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintf(w, "Error: %v", err)
	}
}
