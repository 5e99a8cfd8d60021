package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/vidtube/vidtube-backend/pkg/apierr"
)

// successResponse is the envelope every successful response is wrapped in.
type successResponse struct {
	Success    bool        `json:"success"`
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message"`
}

// errorResponse is the envelope for every failure.
type errorResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func respond(w http.ResponseWriter, statusCode int, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(successResponse{
		Success:    true,
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
	})
}

// RespondError renders any error through the apierr taxonomy. Unrecognized
// errors are logged and rendered as a generic 500.
func RespondError(w http.ResponseWriter, err error) {
	apiErr, known := apierr.From(err)
	if !known {
		log.Printf("Unhandled error: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.StatusCode)
	json.NewEncoder(w).Encode(errorResponse{
		Success: false,
		Message: apiErr.Message,
		Errors:  apiErr.Errs,
	})
}
