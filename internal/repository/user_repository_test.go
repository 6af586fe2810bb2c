package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/mylibrary-be/internal/apperrors"
	"github.com/isdelr/mylibrary-be/internal/database"
	"github.com/isdelr/mylibrary-be/internal/models"
)

func newTestRepo(t *testing.T) *SQLiteUserRepository {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	// A pooled second connection would see a different in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))
	return NewUserRepository(db)
}

func seedUser(t *testing.T, repo *SQLiteUserRepository, email, username string) models.User {
	t.Helper()

	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: "$argon2id$placeholder",
		Role:         models.RoleUser,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestFind_Lookups(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := seedUser(t, repo, "a@example.com", "alice")

	byID, err := repo.Find(ctx, ByID(user.ID))
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)

	byEmail, err := repo.Find(ctx, ByEmail("a@example.com"))
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byUsername, err := repo.Find(ctx, ByUsername("alice"))
	require.NoError(t, err)
	assert.Equal(t, user.ID, byUsername.ID)

	// ByAny OR-combines: a hit on either field matches.
	byAny, err := repo.Find(ctx, ByAny("", "nobody@example.com", "alice"))
	require.NoError(t, err)
	assert.Equal(t, user.ID, byAny.ID)

	_, err = repo.Find(ctx, ByEmail("nobody@example.com"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFind_EmptyLookup(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Find(context.Background(), Lookup{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	seedUser(t, repo, "a@example.com", "alice")

	dup := models.User{
		ID:           uuid.New().String(),
		Username:     "alice2",
		Email:        "a@example.com",
		PasswordHash: "$argon2id$placeholder",
		Role:         models.RoleUser,
	}
	err := repo.Create(context.Background(), dup)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUpdate_RefreshHashSetAndClear(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := seedUser(t, repo, "a@example.com", "alice")

	hash := "$argon2id$refresh-hash"
	require.NoError(t, repo.Update(ctx, user.ID, UserUpdate{RefreshTokenHash: &hash}))
	got, err := repo.Find(ctx, ByID(user.ID))
	require.NoError(t, err)
	assert.Equal(t, hash, got.RefreshTokenHash)

	// Pointing the mask at "" clears the column to NULL (logout).
	cleared := ""
	require.NoError(t, repo.Update(ctx, user.ID, UserUpdate{RefreshTokenHash: &cleared}))
	got, err = repo.Find(ctx, ByID(user.ID))
	require.NoError(t, err)
	assert.Empty(t, got.RefreshTokenHash)
}

func TestUpdate_UnknownUser(t *testing.T) {
	repo := newTestRepo(t)

	verified := true
	err := repo.Update(context.Background(), "missing-id", UserUpdate{EmailVerified: &verified})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := seedUser(t, repo, "a@example.com", "alice")

	require.NoError(t, repo.Delete(ctx, user.ID))
	_, err := repo.Find(ctx, ByID(user.ID))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, user.ID), apperrors.ErrNotFound)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := models.User{
		ID:           uuid.New().String(),
		Username:     "bob",
		Email:        "b@example.com",
		PasswordHash: "$argon2id$placeholder",
		Role:         models.RoleUser,
	}
	sentinel := errors.New("boom")
	err := repo.WithinTx(ctx, func(tx UserRepository) error {
		if err := tx.Create(ctx, user); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	_, err = repo.Find(ctx, ByID(user.ID))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteUnverifiedBefore(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	stale := seedUser(t, repo, "stale@example.com", "stale")
	verifiedUser := seedUser(t, repo, "ok@example.com", "ok")
	verified := true
	require.NoError(t, repo.Update(ctx, verifiedUser.ID, UserUpdate{EmailVerified: &verified}))

	n, err := repo.DeleteUnverifiedBefore(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = repo.Find(ctx, ByID(stale.ID))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = repo.Find(ctx, ByID(verifiedUser.ID))
	assert.NoError(t, err)
}
