package repository

import (
	"context"
	"errors"

	"github.com/vendora/marketplace-api/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no user matches the lookup key.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicateEmail is returned by Create when the email (case-insensitive)
	// is already registered.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrVersionConflict is returned by Update when the row was modified
	// since it was read. Callers re-read and retry.
	ErrVersionConflict = errors.New("user modified concurrently")
)

// UserRepository defines the persistence operations for the User aggregate.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// Update saves the whole aggregate in a single write. It compares the
	// aggregate's Version against the stored row and fails with
	// ErrVersionConflict on mismatch; on success the Version is bumped.
	Update(ctx context.Context, u *entity.User) error
}
