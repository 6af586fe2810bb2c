package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/isdelr/mylibrary-be/internal/apperrors"
	"github.com/isdelr/mylibrary-be/internal/models"
)

// Lookup selects users by id, email and/or username. Multiple set fields are
// OR-combined. A zero Lookup is invalid.
type Lookup struct {
	id       string
	email    string
	username string
}

// ByID looks a user up by primary key.
func ByID(id string) Lookup { return Lookup{id: id} }

// ByEmail looks a user up by email.
func ByEmail(email string) Lookup { return Lookup{email: email} }

// ByUsername looks a user up by username.
func ByUsername(username string) Lookup { return Lookup{username: username} }

// ByAny OR-combines whichever of the given fields are non-empty.
func ByAny(id, email, username string) Lookup {
	return Lookup{id: id, email: email, username: username}
}

func (l Lookup) clauses() (string, []interface{}) {
	var conds []string
	var args []interface{}
	if l.id != "" {
		conds = append(conds, "id = ?")
		args = append(args, l.id)
	}
	if l.email != "" {
		conds = append(conds, "email = ?")
		args = append(args, l.email)
	}
	if l.username != "" {
		conds = append(conds, "username = ?")
		args = append(args, l.username)
	}
	return strings.Join(conds, " OR "), args
}

// UserUpdate is a field mask for single-row user updates. Nil fields are left
// untouched. A RefreshTokenHash pointing at "" clears the column to NULL,
// which is how logout revokes the outstanding refresh token.
type UserUpdate struct {
	Username         *string
	Email            *string
	PhoneNumber      *string
	PasswordHash     *string
	RefreshTokenHash *string
	EmailVerified    *bool
	Role             *models.Role
}

// UserRepository is the data-store boundary for user records.
type UserRepository interface {
	Find(ctx context.Context, lookup Lookup) (models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, user models.User) error
	Update(ctx context.Context, id string, upd UserUpdate) error
	Delete(ctx context.Context, id string) error
	DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	// WithinTx runs fn against a repository bound to a single transaction,
	// committing when fn returns nil and rolling back otherwise.
	WithinTx(ctx context.Context, fn func(UserRepository) error) error
}

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// SQLiteUserRepository implements UserRepository on a SQLite database.
type SQLiteUserRepository struct {
	db   dbtx
	root *sql.DB // nil inside a transaction
}

// NewUserRepository creates a SQLite-backed user repository.
func NewUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db, root: db}
}

const userColumns = "id, username, email, password_hash, refresh_token_hash, role, phone_number, email_verified, created_at, updated_at"

func scanUser(scanner interface{ Scan(...interface{}) error }) (models.User, error) {
	var user models.User
	var refreshHash, phone sql.NullString

	err := scanner.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&refreshHash, &user.Role, &phone, &user.EmailVerified,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return user, err
	}
	user.RefreshTokenHash = refreshHash.String
	user.PhoneNumber = phone.String
	return user, nil
}

// Find retrieves a single user matching the lookup criteria.
func (r *SQLiteUserRepository) Find(ctx context.Context, lookup Lookup) (models.User, error) {
	where, args := lookup.clauses()
	if where == "" {
		return models.User{}, fmt.Errorf("%w: empty lookup criteria", apperrors.ErrInvalidArgument)
	}

	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, args...)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, fmt.Errorf("user %w", apperrors.ErrNotFound)
		}
		return models.User{}, err
	}
	return user, nil
}

// FindAll retrieves every user record.
func (r *SQLiteUserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Create inserts a new user record. Unique-constraint violations on email or
// username surface as ErrConflict.
func (r *SQLiteUserRepository) Create(ctx context.Context, user models.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users(id, username, email, password_hash, role, phone_number, email_verified)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Role,
		nullable(user.PhoneNumber), user.EmailVerified,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("email or username %w", apperrors.ErrConflict)
		}
		return err
	}
	return nil
}

// Update applies a field mask to a single user row.
func (r *SQLiteUserRepository) Update(ctx context.Context, id string, upd UserUpdate) error {
	sets := []string{"updated_at = CURRENT_TIMESTAMP"}
	var args []interface{}

	if upd.Username != nil {
		sets = append(sets, "username = ?")
		args = append(args, *upd.Username)
	}
	if upd.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *upd.Email)
	}
	if upd.PhoneNumber != nil {
		sets = append(sets, "phone_number = ?")
		args = append(args, nullable(*upd.PhoneNumber))
	}
	if upd.PasswordHash != nil {
		sets = append(sets, "password_hash = ?")
		args = append(args, *upd.PasswordHash)
	}
	if upd.RefreshTokenHash != nil {
		sets = append(sets, "refresh_token_hash = ?")
		args = append(args, nullable(*upd.RefreshTokenHash))
	}
	if upd.EmailVerified != nil {
		sets = append(sets, "email_verified = ?")
		args = append(args, *upd.EmailVerified)
	}
	if upd.Role != nil {
		sets = append(sets, "role = ?")
		args = append(args, *upd.Role)
	}

	args = append(args, id)
	res, err := r.db.ExecContext(ctx, "UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("email or username %w", apperrors.ErrConflict)
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user %w", apperrors.ErrNotFound)
	}
	return nil
}

// Delete removes a user record.
func (r *SQLiteUserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user %w", apperrors.ErrNotFound)
	}
	return nil
}

// DeleteUnverifiedBefore removes accounts that never verified their email and
// were created before cutoff. Used by the maintenance sweep.
func (r *SQLiteUserRepository) DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	// created_at is written by CURRENT_TIMESTAMP; compare in the same format.
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM users WHERE email_verified = 0 AND created_at < ?",
		cutoff.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// WithinTx runs fn inside a single transaction.
func (r *SQLiteUserRepository) WithinTx(ctx context.Context, fn func(UserRepository) error) error {
	if r.root == nil {
		// Already inside a transaction; run against it directly.
		return fn(r)
	}

	tx, err := r.root.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(&SQLiteUserRepository{db: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
