package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/isdelr/mylibrary-be/internal/apperrors"
	"github.com/isdelr/mylibrary-be/internal/models"
)

// AddressServiceProvider defines the interface for address services.
// Addresses are owner-scoped: every operation takes the owning user id and
// refuses to touch rows belonging to someone else.
type AddressServiceProvider interface {
	GetAddressesForUser(ctx context.Context, userID string) ([]models.Address, error)
	CreateAddress(ctx context.Context, address models.Address) (models.Address, error)
	UpdateAddress(ctx context.Context, userID, id string, address models.Address) (models.Address, error)
	DeleteAddress(ctx context.Context, userID, id string) error
}

// AddressService provides business logic for user addresses.
type AddressService struct {
	db *sql.DB
}

// NewAddressService creates a new AddressService.
func NewAddressService(db *sql.DB) *AddressService {
	return &AddressService{db: db}
}

const addressColumns = "id, user_id, apartment_number, street, city, state, country, postal_code, latitude, longitude, created_at"

func scanAddress(scanner interface{ Scan(...interface{}) error }) (models.Address, error) {
	var addr models.Address
	var apt, state, postal sql.NullString
	var lat, lon sql.NullFloat64

	err := scanner.Scan(
		&addr.ID, &addr.UserID, &apt, &addr.Street, &addr.City, &state,
		&addr.Country, &postal, &lat, &lon, &addr.CreatedAt,
	)
	if err != nil {
		return addr, err
	}
	addr.ApartmentNumber = apt.String
	addr.State = state.String
	addr.PostalCode = postal.String
	addr.Latitude = lat.Float64
	addr.Longitude = lon.Float64
	return addr, nil
}

// GetAddressesForUser lists a user's addresses.
func (s *AddressService) GetAddressesForUser(ctx context.Context, userID string) ([]models.Address, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+addressColumns+" FROM addresses WHERE user_id = ? ORDER BY created_at", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addresses []models.Address
	for rows.Next() {
		addr, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, addr)
	}
	return addresses, rows.Err()
}

func (s *AddressService) getAddress(ctx context.Context, userID, id string) (models.Address, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+addressColumns+" FROM addresses WHERE id = ? AND user_id = ?", id, userID)
	addr, err := scanAddress(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Address{}, fmt.Errorf("address %w", apperrors.ErrNotFound)
		}
		return models.Address{}, err
	}
	return addr, nil
}

// CreateAddress stores a new address for its owner.
func (s *AddressService) CreateAddress(ctx context.Context, address models.Address) (models.Address, error) {
	address.ID = uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO addresses(id, user_id, apartment_number, street, city, state, country, postal_code, latitude, longitude)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		address.ID, address.UserID, address.ApartmentNumber, address.Street,
		address.City, address.State, address.Country, address.PostalCode,
		address.Latitude, address.Longitude,
	)
	if err != nil {
		return models.Address{}, err
	}
	return s.getAddress(ctx, address.UserID, address.ID)
}

// UpdateAddress updates an address owned by userID.
func (s *AddressService) UpdateAddress(ctx context.Context, userID, id string, address models.Address) (models.Address, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE addresses SET apartment_number = ?, street = ?, city = ?, state = ?,
		        country = ?, postal_code = ?, latitude = ?, longitude = ?
		 WHERE id = ? AND user_id = ?`,
		address.ApartmentNumber, address.Street, address.City, address.State,
		address.Country, address.PostalCode, address.Latitude, address.Longitude,
		id, userID,
	)
	if err != nil {
		return models.Address{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Address{}, fmt.Errorf("address %w", apperrors.ErrNotFound)
	}
	return s.getAddress(ctx, userID, id)
}

// DeleteAddress removes an address owned by userID.
func (s *AddressService) DeleteAddress(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM addresses WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("address %w", apperrors.ErrNotFound)
	}
	return nil
}
