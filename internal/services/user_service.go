package services

import (
	"context"

	"github.com/isdelr/mylibrary-be/internal/models"
	"github.com/isdelr/mylibrary-be/internal/repository"
)

// ProfileUpdate carries the profile fields a user may change themselves.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Username    *string
	Email       *string
	PhoneNumber *string
}

// UserServiceProvider defines the interface for user and profile services.
type UserServiceProvider interface {
	GetByID(ctx context.Context, id string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (models.User, error)
	Delete(ctx context.Context, id string) error
}

// UserService provides business logic for user and profile management on top
// of the user repository. Sensitive columns never leave this layer: the model
// hides them from JSON, and handlers only ever see the full hashes here.
type UserService struct {
	users repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// GetByID retrieves a single user by their ID.
func (s *UserService) GetByID(ctx context.Context, id string) (models.User, error) {
	return s.users.Find(ctx, repository.ByID(id))
}

// List retrieves all users.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.FindAll(ctx)
}

// UpdateProfile updates a user's non-sensitive information.
func (s *UserService) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (models.User, error) {
	err := s.users.Update(ctx, id, repository.UserUpdate{
		Username:    upd.Username,
		Email:       upd.Email,
		PhoneNumber: upd.PhoneNumber,
	})
	if err != nil {
		return models.User{}, err
	}
	return s.users.Find(ctx, repository.ByID(id))
}

// Delete removes a user account. Addresses cascade with it.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}
