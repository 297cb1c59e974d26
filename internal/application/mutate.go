package application

import (
	"context"
	"errors"

	"github.com/vendora/marketplace-api/internal/domain/entity"
	"github.com/vendora/marketplace-api/internal/domain/repository"
)

const maxSaveAttempts = 3

// mutateUser runs a read-modify-write cycle against the user aggregate,
// retrying on version conflicts. The mutation fn is re-applied to a fresh
// read on each attempt, so checks inside fn (e.g. refresh-token presence)
// see the latest committed state.
func mutateUser(ctx context.Context, repo repository.UserRepository, userID string, fn func(*entity.User) error) (*entity.User, error) {
	var lastErr error
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		u, err := repo.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := fn(u); err != nil {
			return nil, err
		}
		err = repo.Update(ctx, u)
		if errors.Is(err, repository.ErrVersionConflict) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}
		return u, nil
	}
	return nil, lastErr
}
