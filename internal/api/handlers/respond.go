package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/mylibrary-be/internal/apperrors"
)

// apiResponse is the uniform envelope every endpoint answers with.
type apiResponse struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
}

func respond(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{StatusCode: status, Message: message, Data: data})
}

// respondError maps a service error onto the taxonomy's HTTP status. Internal
// errors answer with a generic message so driver details never leak.
func respondError(w http.ResponseWriter, err error) {
	status := apperrors.StatusCode(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("Internal error")
		message = "Internal server error"
	}
	respond(w, status, message, nil)
}

// decode parses a JSON request body, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respond(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	return true
}
