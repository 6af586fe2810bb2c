package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/mylibrary-be/internal/models"
	"github.com/isdelr/mylibrary-be/internal/services"
)

// BookHandler handles HTTP requests for the book catalog.
type BookHandler struct {
	service services.BookServiceProvider
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(service services.BookServiceProvider) *BookHandler {
	return &BookHandler{service: service}
}

// BookPayload defines the structure for create/update requests.
type BookPayload struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Author          string `json:"author"`
	Genre           string `json:"genre"`
	ISBN            string `json:"isbn"`
	TotalCopies     int    `json:"totalCopies"`
	AvailableCopies int    `json:"availableCopies"`
}

func (p BookPayload) toModel() models.Book {
	return models.Book{
		Title:           p.Title,
		Description:     p.Description,
		Author:          p.Author,
		Genre:           p.Genre,
		ISBN:            p.ISBN,
		TotalCopies:     p.TotalCopies,
		AvailableCopies: p.AvailableCopies,
	}
}

// GetAll lists the catalog.
func (h *BookHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.GetAllBooks(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list books")
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "Books retrieved", books)
}

// Get retrieves a single book.
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	book, err := h.service.GetBookByID(r.Context(), id)
	if err != nil {
		log.Warn().Err(err).Str("book_id", id).Msg("Failed to get book")
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "Book retrieved", book)
}

// Create adds a new book to the catalog.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload BookPayload
	if !decode(w, r, &payload) {
		return
	}
	if payload.Title == "" || payload.Author == "" || payload.Genre == "" {
		respond(w, http.StatusBadRequest, "Title, author and genre are required", nil)
		return
	}

	book, err := h.service.CreateBook(r.Context(), payload.toModel())
	if err != nil {
		log.Error().Err(err).Str("title", payload.Title).Msg("Failed to create book")
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, "Book created", book)
}

// Update changes a book's catalog information.
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var payload BookPayload
	if !decode(w, r, &payload) {
		return
	}

	book, err := h.service.UpdateBook(r.Context(), id, payload.toModel())
	if err != nil {
		log.Warn().Err(err).Str("book_id", id).Msg("Failed to update book")
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "Book updated", book)
}

// Delete removes a book from the catalog.
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteBook(r.Context(), id); err != nil {
		log.Warn().Err(err).Str("book_id", id).Msg("Failed to delete book")
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
