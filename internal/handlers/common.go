package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"persona-tutor/internal/middleware"
	"persona-tutor/internal/models"
	"persona-tutor/internal/sandbox"
	"persona-tutor/internal/services"
)

// APIKeyHeader carries the completion service credential typed into the
// sidebar. It is used for one request and never stored.
const APIKeyHeader = "X-API-Key"

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get(middleware.RequestIDHeader),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get(middleware.RequestIDHeader),
		},
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch e := err.(type) {
	case *services.ValidationError:
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", e.Error(), e.Fields, r))
	case *services.ConflictError:
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", e.Message, r))
	case *services.NotFoundError:
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", e.Message, r))
	case *services.MissingCredentialError:
		writeJSON(w, http.StatusBadRequest, errorResp("MISSING_CREDENTIAL", e.Error(), r))
	case *services.ProviderError:
		writeJSON(w, http.StatusBadGateway, errorResp("PROVIDER_ERROR", e.Error(), r))
	case *sandbox.ExecutionError:
		writeJSON(w, http.StatusUnprocessableEntity, errorResp("SANDBOX_EXECUTION_ERROR", e.Message, r))
	default:
		log.Printf("Unhandled error on %s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return false
	}
	return true
}

func parseProfile(w http.ResponseWriter, r *http.Request, req models.ProfileRequest) (models.Profile, bool) {
	profile, fields := models.ParseProfile(req)
	if fields != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Invalid profile", fields, r))
		return profile, false
	}
	return profile, true
}

func apiKeyFromRequest(r *http.Request) string {
	return r.Header.Get(APIKeyHeader)
}

func snippetKeyFromRequest(w http.ResponseWriter, r *http.Request) (models.SnippetKey, bool) {
	msg, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || msg < 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid message index", r))
		return models.SnippetKey{}, false
	}
	snippet, err := strconv.Atoi(chi.URLParam(r, "snippet"))
	if err != nil || snippet < 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid snippet index", r))
		return models.SnippetKey{}, false
	}
	return models.SnippetKey{MessageIndex: msg, SnippetIndex: snippet}, true
}
