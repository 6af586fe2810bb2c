package models

import "time"

// Book represents a title in the library catalog.
type Book struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Author          string    `json:"author"`
	Genre           string    `json:"genre"`
	ISBN            string    `json:"isbn,omitempty"`
	TotalCopies     int       `json:"totalCopies"`
	AvailableCopies int       `json:"availableCopies"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
