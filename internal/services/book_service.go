package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/isdelr/mylibrary-be/internal/apperrors"
	"github.com/isdelr/mylibrary-be/internal/models"
)

// BookServiceProvider defines the interface for catalog services.
type BookServiceProvider interface {
	GetAllBooks(ctx context.Context) ([]models.Book, error)
	GetBookByID(ctx context.Context, id string) (models.Book, error)
	CreateBook(ctx context.Context, book models.Book) (models.Book, error)
	UpdateBook(ctx context.Context, id string, book models.Book) (models.Book, error)
	DeleteBook(ctx context.Context, id string) error
}

// BookService provides business logic for the book catalog.
type BookService struct {
	db *sql.DB
}

// NewBookService creates a new BookService.
func NewBookService(db *sql.DB) *BookService {
	return &BookService{db: db}
}

const bookColumns = "id, title, description, author, genre, isbn, total_copies, available_copies, created_at, updated_at"

// scanBook is a helper to scan a book from a row or rows object.
func scanBook(scanner interface{ Scan(...interface{}) error }) (models.Book, error) {
	var book models.Book
	var desc, isbn sql.NullString

	err := scanner.Scan(
		&book.ID, &book.Title, &desc, &book.Author, &book.Genre, &isbn,
		&book.TotalCopies, &book.AvailableCopies, &book.CreatedAt, &book.UpdatedAt,
	)
	if err != nil {
		return book, err
	}
	book.Description = desc.String
	book.ISBN = isbn.String
	return book, nil
}

// GetAllBooks retrieves the whole catalog.
func (s *BookService) GetAllBooks(ctx context.Context) ([]models.Book, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+bookColumns+" FROM books ORDER BY title")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// GetBookByID retrieves a single book by its ID.
func (s *BookService) GetBookByID(ctx context.Context, id string) (models.Book, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+bookColumns+" FROM books WHERE id = ?", id)
	book, err := scanBook(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Book{}, fmt.Errorf("book %w", apperrors.ErrNotFound)
		}
		return models.Book{}, err
	}
	return book, nil
}

// CreateBook adds a new book to the catalog. Available copies start equal to
// the total.
func (s *BookService) CreateBook(ctx context.Context, book models.Book) (models.Book, error) {
	book.ID = uuid.New().String()
	if book.TotalCopies <= 0 {
		book.TotalCopies = 1
	}
	book.AvailableCopies = book.TotalCopies

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO books(id, title, description, author, genre, isbn, total_copies, available_copies)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID, book.Title, book.Description, book.Author, book.Genre,
		book.ISBN, book.TotalCopies, book.AvailableCopies,
	)
	if err != nil {
		return models.Book{}, err
	}
	return s.GetBookByID(ctx, book.ID)
}

// UpdateBook updates a book's catalog information.
func (s *BookService) UpdateBook(ctx context.Context, id string, book models.Book) (models.Book, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE books SET title = ?, description = ?, author = ?, genre = ?, isbn = ?,
		        total_copies = ?, available_copies = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		book.Title, book.Description, book.Author, book.Genre, book.ISBN,
		book.TotalCopies, book.AvailableCopies, id,
	)
	if err != nil {
		return models.Book{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Book{}, fmt.Errorf("book %w", apperrors.ErrNotFound)
	}
	return s.GetBookByID(ctx, id)
}

// DeleteBook removes a book from the catalog.
func (s *BookService) DeleteBook(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM books WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("book %w", apperrors.ErrNotFound)
	}
	return nil
}
