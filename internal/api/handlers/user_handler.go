package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/mylibrary-be/internal/services"
)

// UserHandler handles admin-only user management endpoints.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// GetAll lists every user account.
func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "Users retrieved", users)
}

// Get handles retrieving a user by their ID.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		log.Warn().Err(err).Str("user_id", id).Msg("Failed to get user by ID")
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "User retrieved", user)
}

// Delete handles the permanent deletion of a user account.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		log.Error().Err(err).Str("user_id", id).Msg("Failed to delete user")
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
