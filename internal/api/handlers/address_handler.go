package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/mylibrary-be/internal/auth"
	"github.com/isdelr/mylibrary-be/internal/models"
	"github.com/isdelr/mylibrary-be/internal/services"
)

// AddressHandler handles HTTP requests for the authenticated user's
// addresses. Ownership is enforced by always scoping to the subject id from
// the access guard.
type AddressHandler struct {
	service services.AddressServiceProvider
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(service services.AddressServiceProvider) *AddressHandler {
	return &AddressHandler{service: service}
}

// AddressPayload defines the structure for create/update requests.
type AddressPayload struct {
	ApartmentNumber string  `json:"apartmentNumber"`
	Street          string  `json:"street"`
	City            string  `json:"city"`
	State           string  `json:"state"`
	Country         string  `json:"country"`
	PostalCode      string  `json:"postalCode"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
}

func (p AddressPayload) toModel(userID string) models.Address {
	return models.Address{
		UserID:          userID,
		ApartmentNumber: p.ApartmentNumber,
		Street:          p.Street,
		City:            p.City,
		State:           p.State,
		Country:         p.Country,
		PostalCode:      p.PostalCode,
		Latitude:        p.Latitude,
		Longitude:       p.Longitude,
	}
}

// GetAll lists the authenticated user's addresses.
func (h *AddressHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.SubjectID(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, "Access token not found", nil)
		return
	}

	addresses, err := h.service.GetAddressesForUser(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list addresses")
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "Addresses retrieved", addresses)
}

// Create stores a new address for the authenticated user.
func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.SubjectID(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, "Access token not found", nil)
		return
	}

	var payload AddressPayload
	if !decode(w, r, &payload) {
		return
	}
	if payload.Street == "" || payload.City == "" || payload.Country == "" {
		respond(w, http.StatusBadRequest, "Street, city and country are required", nil)
		return
	}

	address, err := h.service.CreateAddress(r.Context(), payload.toModel(userID))
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create address")
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, "Address created", address)
}

// Update changes one of the authenticated user's addresses.
func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.SubjectID(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, "Access token not found", nil)
		return
	}

	id := chi.URLParam(r, "id")
	var payload AddressPayload
	if !decode(w, r, &payload) {
		return
	}

	address, err := h.service.UpdateAddress(r.Context(), userID, id, payload.toModel(userID))
	if err != nil {
		log.Warn().Err(err).Str("address_id", id).Msg("Failed to update address")
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "Address updated", address)
}

// Delete removes one of the authenticated user's addresses.
func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.SubjectID(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, "Access token not found", nil)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.DeleteAddress(r.Context(), userID, id); err != nil {
		log.Warn().Err(err).Str("address_id", id).Msg("Failed to delete address")
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
