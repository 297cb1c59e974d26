package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vendora/marketplace-api/internal/domain/entity"
)

func TestSessionRegistry(t *testing.T) {
	u := &entity.User{}

	u.AddSession("a", 3)
	u.AddSession("b", 3)
	u.AddSession("c", 3)
	assert.Equal(t, []string{"a", "b", "c"}, u.RefreshTokens)

	// Exceeding the cap evicts the oldest.
	u.AddSession("d", 3)
	assert.Equal(t, []string{"b", "c", "d"}, u.RefreshTokens)
	assert.False(t, u.HasSession("a"))
	assert.True(t, u.HasSession("d"))

	u.RemoveSession("c")
	assert.Equal(t, []string{"b", "d"}, u.RefreshTokens)

	// Removing an absent token is a no-op.
	u.RemoveSession("zz")
	assert.Equal(t, []string{"b", "d"}, u.RefreshTokens)

	u.ClearSessions()
	assert.Empty(t, u.RefreshTokens)
}

func TestStatusForRole(t *testing.T) {
	assert.Equal(t, entity.StatusPending, entity.StatusForRole(entity.RoleBuyer))
	assert.Equal(t, entity.StatusApproved, entity.StatusForRole(entity.RoleSeller))
	assert.Equal(t, entity.StatusApproved, entity.StatusForRole(entity.RoleAdmin))
}

func TestFinalOnboardingStep(t *testing.T) {
	assert.Equal(t, 3, entity.FinalOnboardingStep(entity.RoleBuyer))
	assert.Equal(t, 4, entity.FinalOnboardingStep(entity.RoleSeller))
}
