package models

import "time"

// Address is a delivery address attached to a user account.
type Address struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	ApartmentNumber string    `json:"apartmentNumber,omitempty"`
	Street          string    `json:"street"`
	City            string    `json:"city"`
	State           string    `json:"state,omitempty"`
	Country         string    `json:"country"`
	PostalCode      string    `json:"postalCode,omitempty"`
	Latitude        float64   `json:"latitude,omitempty"`
	Longitude       float64   `json:"longitude,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}
