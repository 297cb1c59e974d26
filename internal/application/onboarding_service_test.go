package application_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora/marketplace-api/internal/application"
	"github.com/vendora/marketplace-api/internal/domain/entity"
	"github.com/vendora/marketplace-api/pkg/validation"
)

func seedUser(t *testing.T, repo *memRepo, email string, role entity.Role) *entity.User {
	t.Helper()
	u := &entity.User{
		ID:     "user-" + email,
		Email:  email,
		Role:   role,
		Status: entity.StatusForRole(role),
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestBuyerOnboarding(t *testing.T) {
	ctx := context.Background()

	t.Run("three steps complete the flow and leave the buyer pending", func(t *testing.T) {
		repo := newMemRepo()
		notifier := &recordingNotifier{}
		svc := application.NewOnboardingService(repo, notifier, quietLogger())
		u := seedUser(t, repo, "buyer@example.com", entity.RoleBuyer)

		_, err := svc.SubmitStep(ctx, u.ID, entity.RoleBuyer, 1, raw(t, map[string]any{
			"companyName":  "Acme Retail",
			"industry":     "retail",
			"foundingYear": 2011,
		}))
		require.NoError(t, err)

		_, err = svc.SubmitStep(ctx, u.ID, entity.RoleBuyer, 2, raw(t, map[string]any{
			"firstName": "Grace",
			"lastName":  "Hopper",
			"phone":     "+14155550123",
		}))
		require.NoError(t, err)

		got, err := svc.SubmitStep(ctx, u.ID, entity.RoleBuyer, 3, raw(t, map[string]any{
			"tradeLicense": "TL-42",
			"taxId":        "TAX-42",
		}))
		require.NoError(t, err)

		assert.True(t, got.OnboardingCompleted)
		assert.Equal(t, 3, got.OnboardingStep)
		assert.Equal(t, entity.StatusPending, got.Status, "buyers await manual approval")
		assert.Equal(t, "Acme Retail", got.Profile.Company.Name)
		assert.Equal(t, "TL-42", got.Profile.Company.TradeLicense)
		assert.Empty(t, notifier.welcomes, "buyers get no welcome email")
	})

	t.Run("steps may arrive out of order", func(t *testing.T) {
		repo := newMemRepo()
		svc := application.NewOnboardingService(repo, &recordingNotifier{}, quietLogger())
		u := seedUser(t, repo, "eager@example.com", entity.RoleBuyer)

		got, err := svc.SubmitStep(ctx, u.ID, entity.RoleBuyer, 2, raw(t, map[string]any{
			"firstName": "Grace",
			"lastName":  "Hopper",
		}))
		require.NoError(t, err)
		assert.Equal(t, 2, got.OnboardingStep)
		assert.False(t, got.OnboardingCompleted)

		// Revisiting an earlier step just merges more data.
		got, err = svc.SubmitStep(ctx, u.ID, entity.RoleBuyer, 1, raw(t, map[string]any{
			"companyName": "Acme Retail",
		}))
		require.NoError(t, err)
		assert.Equal(t, 1, got.OnboardingStep)
		assert.Equal(t, "Grace", got.Profile.FirstName)
	})

	t.Run("out-of-range step leaves the aggregate unchanged", func(t *testing.T) {
		repo := newMemRepo()
		svc := application.NewOnboardingService(repo, &recordingNotifier{}, quietLogger())
		u := seedUser(t, repo, "range@example.com", entity.RoleBuyer)

		before, err := repo.GetByID(ctx, u.ID)
		require.NoError(t, err)

		_, err = svc.SubmitStep(ctx, u.ID, entity.RoleBuyer, 4, raw(t, map[string]any{}))
		assert.ErrorIs(t, err, application.ErrInvalidStep)
		_, err = svc.SubmitStep(ctx, u.ID, entity.RoleBuyer, 0, raw(t, map[string]any{}))
		assert.ErrorIs(t, err, application.ErrInvalidStep)

		after, err := repo.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, before.Version, after.Version)
		assert.Equal(t, before.OnboardingStep, after.OnboardingStep)
	})

	t.Run("invalid payload reports field details", func(t *testing.T) {
		repo := newMemRepo()
		svc := application.NewOnboardingService(repo, &recordingNotifier{}, quietLogger())
		u := seedUser(t, repo, "fields@example.com", entity.RoleBuyer)

		_, err := svc.SubmitStep(ctx, u.ID, entity.RoleBuyer, 2, raw(t, map[string]any{
			"firstName": "OnlyFirst",
		}))
		var fe *validation.FieldsError
		require.ErrorAs(t, err, &fe)
		assert.Contains(t, fe.Details, "lastName")
	})

	t.Run("seller endpoint rejects a buyer", func(t *testing.T) {
		repo := newMemRepo()
		svc := application.NewOnboardingService(repo, &recordingNotifier{}, quietLogger())
		u := seedUser(t, repo, "wrongdoor@example.com", entity.RoleBuyer)

		_, err := svc.SubmitStep(ctx, u.ID, entity.RoleSeller, 3, raw(t, map[string]any{
			"firstName": "Grace",
			"lastName":  "Hopper",
		}))
		assert.ErrorIs(t, err, application.ErrForbiddenRole)
	})
}

func TestSellerOnboarding(t *testing.T) {
	ctx := context.Background()

	t.Run("four steps complete, auto-approve, and send a welcome email", func(t *testing.T) {
		repo := newMemRepo()
		notifier := &recordingNotifier{}
		svc := application.NewOnboardingService(repo, notifier, quietLogger())
		u := seedUser(t, repo, "seller@example.com", entity.RoleSeller)

		_, err := svc.SubmitStep(ctx, u.ID, entity.RoleSeller, 1, raw(t, map[string]any{
			"companyName": "Vendora Goods",
			"categories":  []string{"electronics"},
			"currencies":  []string{"USD", "EUR"},
		}))
		require.NoError(t, err)

		_, err = svc.SubmitStep(ctx, u.ID, entity.RoleSeller, 2, raw(t, map[string]any{
			"monthlyVolume":    "10k-50k",
			"warehouseCity":    "Rotterdam",
			"warehouseCountry": "NL",
			"shippingMethod":   "courier",
			"shippingRegions":  []string{"EU"},
		}))
		require.NoError(t, err)

		_, err = svc.SubmitStep(ctx, u.ID, entity.RoleSeller, 3, raw(t, map[string]any{
			"firstName": "Margaret",
			"lastName":  "Hamilton",
		}))
		require.NoError(t, err)

		got, err := svc.SubmitStep(ctx, u.ID, entity.RoleSeller, 4, raw(t, map[string]any{
			"tradeLicense":  "TL-7",
			"taxId":         "TAX-7",
			"bankName":      "First Orbital",
			"accountNumber": "NL00FAKE0123456789",
		}))
		require.NoError(t, err)

		assert.True(t, got.OnboardingCompleted)
		assert.Equal(t, entity.StatusApproved, got.Status, "sellers are auto-approved")
		assert.Equal(t, []string{"electronics"}, got.SellerExtra.Categories)
		assert.Equal(t, "Rotterdam", got.SellerExtra.Warehouse.City)
		assert.Equal(t, "First Orbital", got.SellerExtra.Bank.BankName)
		assert.Equal(t, []string{"seller@example.com"}, notifier.welcomes)
	})

	t.Run("completion is one-shot", func(t *testing.T) {
		repo := newMemRepo()
		notifier := &recordingNotifier{}
		svc := application.NewOnboardingService(repo, notifier, quietLogger())
		u := seedUser(t, repo, "again@example.com", entity.RoleSeller)

		final := raw(t, map[string]any{
			"tradeLicense":  "TL-1",
			"taxId":         "TAX-1",
			"bankName":      "Bank",
			"accountNumber": "123",
		})
		_, err := svc.SubmitStep(ctx, u.ID, entity.RoleSeller, 4, final)
		require.NoError(t, err)
		_, err = svc.SubmitStep(ctx, u.ID, entity.RoleSeller, 4, final)
		require.NoError(t, err)

		assert.Len(t, notifier.welcomes, 1, "welcome email sent only on first completion")
	})

	t.Run("invalid currency code is rejected", func(t *testing.T) {
		repo := newMemRepo()
		svc := application.NewOnboardingService(repo, &recordingNotifier{}, quietLogger())
		u := seedUser(t, repo, "currency@example.com", entity.RoleSeller)

		_, err := svc.SubmitStep(ctx, u.ID, entity.RoleSeller, 1, raw(t, map[string]any{
			"companyName": "Vendora Goods",
			"categories":  []string{"electronics"},
			"currencies":  []string{"US"},
		}))
		var fe *validation.FieldsError
		assert.ErrorAs(t, err, &fe)
	})
}

func TestCompleteOnboarding(t *testing.T) {
	ctx := context.Background()

	t.Run("explicit completion requires the core profile fields", func(t *testing.T) {
		repo := newMemRepo()
		svc := application.NewOnboardingService(repo, &recordingNotifier{}, quietLogger())
		u := seedUser(t, repo, "incomplete@example.com", entity.RoleBuyer)

		_, err := svc.Complete(ctx, u.ID)
		assert.ErrorIs(t, err, application.ErrIncompleteProfile)
	})

	t.Run("explicit completion succeeds independent of the recorded step", func(t *testing.T) {
		repo := newMemRepo()
		svc := application.NewOnboardingService(repo, &recordingNotifier{}, quietLogger())
		u := seedUser(t, repo, "manual@example.com", entity.RoleBuyer)

		_, err := svc.SubmitStep(ctx, u.ID, entity.RoleBuyer, 1, raw(t, map[string]any{
			"companyName": "Acme Retail",
		}))
		require.NoError(t, err)
		_, err = svc.SubmitStep(ctx, u.ID, entity.RoleBuyer, 2, raw(t, map[string]any{
			"firstName": "Grace",
			"lastName":  "Hopper",
		}))
		require.NoError(t, err)

		got, err := svc.Complete(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, got.OnboardingCompleted)
		assert.Equal(t, entity.StatusPending, got.Status)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := application.NewOnboardingService(newMemRepo(), &recordingNotifier{}, quietLogger())
		_, err := svc.Complete(ctx, "missing")
		assert.ErrorIs(t, err, application.ErrUserNotFound)
	})
}

func TestOnboardingStatus(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := application.NewOnboardingService(repo, &recordingNotifier{}, quietLogger())

	buyer := seedUser(t, repo, "statusbuyer@example.com", entity.RoleBuyer)
	seller := seedUser(t, repo, "statusseller@example.com", entity.RoleSeller)

	_, err := svc.SubmitStep(ctx, buyer.ID, entity.RoleBuyer, 1, raw(t, map[string]any{
		"companyName": "Acme Retail",
	}))
	require.NoError(t, err)

	st, err := svc.Status(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleBuyer, st.Role)
	assert.Equal(t, 1, st.Step)
	assert.False(t, st.Completed)
	assert.Nil(t, st.SellerExtra, "buyers have no seller section")

	st, err = svc.Status(ctx, seller.ID)
	require.NoError(t, err)
	assert.NotNil(t, st.SellerExtra)
}
