package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/mylibrary-be/internal/auth"
	"github.com/isdelr/mylibrary-be/internal/services"
)

// ProfileHandler serves the authenticated user's own record. The subject id
// always comes from the access guard, never from the URL, so a user can only
// ever touch themselves here.
type ProfileHandler struct {
	service services.UserServiceProvider
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(service services.UserServiceProvider) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Get returns the authenticated user's profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.SubjectID(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, "Access token not found", nil)
		return
	}

	user, err := h.service.GetByID(r.Context(), userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to load profile")
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "Profile retrieved", user)
}

// Update changes the authenticated user's profile fields.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.SubjectID(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, "Access token not found", nil)
		return
	}

	var payload struct {
		Username    *string `json:"username"`
		Email       *string `json:"email"`
		PhoneNumber *string `json:"phoneNumber"`
	}
	if !decode(w, r, &payload) {
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), userID, services.ProfileUpdate{
		Username:    payload.Username,
		Email:       payload.Email,
		PhoneNumber: payload.PhoneNumber,
	})
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to update profile")
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "Profile updated", user)
}

// Delete removes the authenticated user's account.
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.SubjectID(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, "Access token not found", nil)
		return
	}

	if err := h.service.Delete(r.Context(), userID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to delete profile")
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "Profile deleted", nil)
}
