package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/isdelr/mylibrary-be/internal/apperrors"
	"github.com/isdelr/mylibrary-be/internal/auth"
	"github.com/isdelr/mylibrary-be/internal/config"
	"github.com/isdelr/mylibrary-be/internal/logger"
	"github.com/isdelr/mylibrary-be/internal/mail"
	"github.com/isdelr/mylibrary-be/internal/models"
	"github.com/isdelr/mylibrary-be/internal/repository"
)

// registerTimeout bounds the registration transaction so a stalled write
// cannot leave a half-created user behind.
const registerTimeout = 10 * time.Second

// Tokens is an access/refresh token pair.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RegisterInput is the payload for a new registration. Username is optional;
// a default is derived from the email when absent.
type RegisterInput struct {
	Email       string
	Username    string
	Password    string
	PhoneNumber string
}

// SessionServiceProvider defines the interface for session management.
type SessionServiceProvider interface {
	Register(ctx context.Context, input RegisterInput) (models.User, Tokens, error)
	VerifyEmail(ctx context.Context, token string) (models.User, error)
	Login(ctx context.Context, email, password string) (Tokens, error)
	RefreshTokens(ctx context.Context, userID string) (Tokens, error)
	Logout(ctx context.Context, userID string) error
	ForgotPassword(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// SessionService orchestrates login, registration, logout, token refresh and
// password changes. All session state lives either in signed tokens or in the
// user store, so any number of requests may run concurrently; the only shared
// mutable state is the per-user row and every write here is scoped to one id.
type SessionService struct {
	users  repository.UserRepository
	codec  *auth.Codec
	mailer mail.Sender
	cfg    *config.Config
	log    zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(users repository.UserRepository, codec *auth.Codec, mailer mail.Sender, cfg *config.Config) *SessionService {
	return &SessionService{
		users:  users,
		codec:  codec,
		mailer: mailer,
		cfg:    cfg,
		log:    logger.Component("session"),
	}
}

// issueTokens creates a fresh access/refresh pair for the user.
func (s *SessionService) issueTokens(userID string) (Tokens, error) {
	accessToken, err := s.codec.Issue(userID, s.cfg.AccessTokenTTL)
	if err != nil {
		return Tokens{}, fmt.Errorf("failed to issue access token: %w", err)
	}
	refreshToken, err := s.codec.Issue(userID, s.cfg.RefreshTokenTTL)
	if err != nil {
		return Tokens{}, fmt.Errorf("failed to issue refresh token: %w", err)
	}
	return Tokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// rotate issues a new token pair and overwrites the stored refresh hash, so
// at most one refresh token stays valid per user.
func (s *SessionService) rotate(ctx context.Context, users repository.UserRepository, userID string) (Tokens, error) {
	tokens, err := s.issueTokens(userID)
	if err != nil {
		return Tokens{}, err
	}

	refreshHash, err := auth.HashSecret(tokens.RefreshToken)
	if err != nil {
		return Tokens{}, fmt.Errorf("failed to hash refresh token: %w", err)
	}
	if err := users.Update(ctx, userID, repository.UserUpdate{RefreshTokenHash: &refreshHash}); err != nil {
		return Tokens{}, err
	}
	return tokens, nil
}

// Register creates a user, issues the first token pair and triggers the
// verification email. User creation and refresh-hash persistence share one
// transactional boundary with a bounded timeout.
func (s *SessionService) Register(ctx context.Context, input RegisterInput) (models.User, Tokens, error) {
	username := input.Username
	if username == "" {
		username = fmt.Sprintf("%s_%d", strings.SplitN(input.Email, "@", 2)[0], time.Now().UnixMilli())
	}

	existing, err := s.users.Find(ctx, repository.ByAny("", input.Email, username))
	if err == nil {
		if existing.Email == input.Email {
			return models.User{}, Tokens{}, fmt.Errorf("email %w", apperrors.ErrConflict)
		}
		return models.User{}, Tokens{}, fmt.Errorf("username %w", apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return models.User{}, Tokens{}, err
	}

	passwordHash, err := auth.HashSecret(input.Password)
	if err != nil {
		return models.User{}, Tokens{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        input.Email,
		PasswordHash: passwordHash,
		Role:         models.RoleUser,
		PhoneNumber:  input.PhoneNumber,
	}

	txCtx, cancel := context.WithTimeout(ctx, registerTimeout)
	defer cancel()

	var tokens Tokens
	err = s.users.WithinTx(txCtx, func(users repository.UserRepository) error {
		if err := users.Create(txCtx, user); err != nil {
			return err
		}
		tokens, err = s.rotate(txCtx, users, user.ID)
		return err
	})
	if err != nil {
		return models.User{}, Tokens{}, err
	}

	s.sendVerificationEmail(user)

	created, err := s.users.Find(ctx, repository.ByID(user.ID))
	if err != nil {
		return models.User{}, Tokens{}, err
	}
	s.log.Info().Str("user_id", user.ID).Msg("User registered")
	return created, tokens, nil
}

// sendVerificationEmail issues an action token and emails the verification
// link. Best-effort: a mail failure never rolls back the registration.
func (s *SessionService) sendVerificationEmail(user models.User) {
	token, err := s.codec.Issue(user.ID, s.cfg.ActionTokenTTL)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue verification token")
		return
	}

	link := mail.Link(s.cfg.AppBaseURL, "/verify-email", url.Values{"token": {token}})
	if err := s.mailer.Send(user.Email, "Email Verification", mail.VerificationEmail(link)); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to send verification email")
	}
}

// VerifyEmail redeems an action token and marks the subject's email verified.
func (s *SessionService) VerifyEmail(ctx context.Context, token string) (models.User, error) {
	userID, err := s.codec.Verify(token)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %s", apperrors.ErrUnauthorized, err.Error())
	}

	verified := true
	if err := s.users.Update(ctx, userID, repository.UserUpdate{EmailVerified: &verified}); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return models.User{}, fmt.Errorf("%w: user not found", apperrors.ErrUnauthorized)
		}
		return models.User{}, err
	}

	user, err := s.users.Find(ctx, repository.ByID(userID))
	if err != nil {
		return models.User{}, err
	}
	s.log.Info().Str("user_id", userID).Msg("Email verified")
	return user, nil
}

// Login verifies credentials and rotates the token pair. The error message
// distinguishes a wrong email from a wrong password, but both carry the same
// status; see DESIGN.md for the trade-off.
func (s *SessionService) Login(ctx context.Context, email, password string) (Tokens, error) {
	user, err := s.users.Find(ctx, repository.ByEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return Tokens{}, fmt.Errorf("%w: invalid email", apperrors.ErrInvalidCredentials)
		}
		return Tokens{}, err
	}

	if !auth.VerifySecret(user.PasswordHash, password) {
		return Tokens{}, fmt.Errorf("%w: invalid password", apperrors.ErrInvalidCredentials)
	}

	tokens, err := s.rotate(ctx, s.users, user.ID)
	if err != nil {
		return Tokens{}, err
	}
	s.log.Info().Str("user_id", user.ID).Msg("Login successful")
	return tokens, nil
}

// RefreshTokens rotates the token pair for an already refresh-authenticated
// subject. The old refresh token's hash is overwritten and stops matching.
func (s *SessionService) RefreshTokens(ctx context.Context, userID string) (Tokens, error) {
	tokens, err := s.rotate(ctx, s.users, userID)
	if err != nil {
		return Tokens{}, err
	}
	s.log.Info().Str("user_id", userID).Msg("Tokens refreshed")
	return tokens, nil
}

// Logout clears the stored refresh hash, revoking the outstanding refresh
// token.
func (s *SessionService) Logout(ctx context.Context, userID string) error {
	cleared := ""
	if err := s.users.Update(ctx, userID, repository.UserUpdate{RefreshTokenHash: &cleared}); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: user not found", apperrors.ErrUnauthorized)
		}
		return err
	}
	s.log.Info().Str("user_id", userID).Msg("Logout successful")
	return nil
}

// ForgotPassword emails a reset link carrying a short-lived action token.
// An unknown email returns NotFound, matching upstream behavior; this leaks
// account existence and is noted in DESIGN.md.
func (s *SessionService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.Find(ctx, repository.ByEmail(email))
	if err != nil {
		return err
	}

	token, err := s.codec.Issue(user.ID, s.cfg.ActionTokenTTL)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	link := mail.Link(s.cfg.AppBaseURL, "/reset-password", url.Values{"token": {token}})
	if err := s.mailer.Send(email, "Password Reset Request",
		mail.PasswordResetEmail(link)); err != nil {
		return fmt.Errorf("%w: failed to send reset email", apperrors.ErrServiceUnavailable)
	}
	s.log.Info().Str("user_id", user.ID).Msg("Password reset email sent")
	return nil
}

// ChangePassword verifies the current password and persists a new hash. The
// new password must differ from the current one.
func (s *SessionService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.Find(ctx, repository.ByID(userID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: user not found", apperrors.ErrUnauthorized)
		}
		return err
	}

	if !auth.VerifySecret(user.PasswordHash, currentPassword) {
		return fmt.Errorf("%w: current password is incorrect", apperrors.ErrUnauthorized)
	}
	if auth.VerifySecret(user.PasswordHash, newPassword) {
		return fmt.Errorf("%w: new password cannot be the same as the current password", apperrors.ErrInvalidArgument)
	}

	newHash, err := auth.HashSecret(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}
	if err := s.users.Update(ctx, userID, repository.UserUpdate{PasswordHash: &newHash}); err != nil {
		return err
	}
	s.log.Info().Str("user_id", userID).Msg("Password changed")
	return nil
}

// ResetPassword redeems an action token from a reset link and persists a new
// password hash.
func (s *SessionService) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := s.codec.Verify(token)
	if err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrUnauthorized, err.Error())
	}

	newHash, err := auth.HashSecret(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}
	if err := s.users.Update(ctx, userID, repository.UserUpdate{PasswordHash: &newHash}); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: user not found", apperrors.ErrUnauthorized)
		}
		return err
	}
	s.log.Info().Str("user_id", userID).Msg("Password reset")
	return nil
}
