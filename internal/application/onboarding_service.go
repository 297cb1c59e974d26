package application

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/vendora/marketplace-api/internal/domain/entity"
	"github.com/vendora/marketplace-api/internal/domain/repository"
	"github.com/vendora/marketplace-api/pkg/validation"
)

// OnboardingService drives the role-specific data-collection sequence a
// new account walks through before it becomes fully active. Buyers have 3
// steps and stay pending for administrative approval; sellers have 4 and
// are auto-approved on completion.
type OnboardingService struct {
	Repo     repository.UserRepository
	Notifier Notifier
	Logger   *logrus.Logger
}

func NewOnboardingService(repo repository.UserRepository, notifier Notifier, logger *logrus.Logger) *OnboardingService {
	return &OnboardingService{Repo: repo, Notifier: notifier, Logger: logger}
}

// StatusProjection is the read-only view used to resume a partially
// completed flow.
type StatusProjection struct {
	Role        entity.Role         `json:"role"`
	Status      entity.Status       `json:"status"`
	Step        int                 `json:"onboardingStep"`
	Completed   bool                `json:"onboardingCompleted"`
	Profile     entity.Profile      `json:"profile"`
	SellerExtra *entity.SellerExtra `json:"sellerExtra,omitempty"`
}

// ---- Step payloads ----
//
// Each (role, step) pair has its own typed input contract; payloads are
// validated before they reach the state machine and merged into the
// profile sub-records, leaving absent fields untouched.

type buyerBusinessInfo struct {
	CompanyName  string `json:"companyName" validate:"required"`
	Website      string `json:"website" validate:"omitempty,url"`
	Industry     string `json:"industry"`
	Size         string `json:"size"`
	FoundingYear int    `json:"foundingYear" validate:"omitempty,year"`
	Description  string `json:"description"`
}

type buyerContactDetails struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Phone     string `json:"phone" validate:"omitempty,phone"`
	Address   string `json:"address"`
}

type buyerVerification struct {
	TradeLicense string `json:"tradeLicense" validate:"required"`
	TaxID        string `json:"taxId" validate:"required"`
}

type sellerBrandInfo struct {
	CompanyName string   `json:"companyName" validate:"required"`
	Website     string   `json:"website" validate:"omitempty,url"`
	LogoURL     string   `json:"logoUrl" validate:"omitempty,url"`
	Description string   `json:"description"`
	Categories  []string `json:"categories" validate:"required,min=1"`
	Currencies  []string `json:"currencies" validate:"required,min=1,dive,len=3"`
}

type sellerBusinessDetails struct {
	FoundingYear     int      `json:"foundingYear" validate:"omitempty,year"`
	Size             string   `json:"size"`
	MonthlyVolume    string   `json:"monthlyVolume"`
	WarehouseAddress string   `json:"warehouseAddress"`
	WarehouseCity    string   `json:"warehouseCity"`
	WarehouseCountry string   `json:"warehouseCountry"`
	ShippingMethod   string   `json:"shippingMethod"`
	ShippingRegions  []string `json:"shippingRegions"`
}

type sellerContactInfo struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Phone     string `json:"phone" validate:"omitempty,phone"`
	Address   string `json:"address"`
}

type sellerVerification struct {
	TradeLicense  string `json:"tradeLicense" validate:"required"`
	TaxID         string `json:"taxId" validate:"required"`
	BankName      string `json:"bankName" validate:"required"`
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber" validate:"required"`
	IBAN          string `json:"iban"`
	SwiftCode     string `json:"swiftCode"`
}

// ---- Step dispatch table ----

// applyFunc merges an already-validated payload into the aggregate.
type applyFunc func(u *entity.User)

// stepHandler decodes and validates a raw step payload into an applyFunc.
type stepHandler func(raw json.RawMessage) (applyFunc, error)

func handlerFor[T any](apply func(u *entity.User, p T)) stepHandler {
	return func(raw json.RawMessage) (applyFunc, error) {
		var p T
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, &validation.FieldsError{Details: map[string]string{"data": "invalid json"}}
			}
		}
		if err := validation.Struct(&p); err != nil {
			return nil, err
		}
		return func(u *entity.User) { apply(u, p) }, nil
	}
}

var onboardingSteps = map[entity.Role]map[int]stepHandler{
	entity.RoleBuyer: {
		1: handlerFor(func(u *entity.User, p buyerBusinessInfo) {
			mergeCompany(&u.Profile.Company, p.CompanyName, p.Website, "", p.Industry, p.Size, p.Description, p.FoundingYear)
		}),
		2: handlerFor(func(u *entity.User, p buyerContactDetails) {
			mergeContact(&u.Profile, p.FirstName, p.LastName, p.Phone, p.Address)
		}),
		3: handlerFor(func(u *entity.User, p buyerVerification) {
			u.Profile.Company.TradeLicense = p.TradeLicense
			u.Profile.Company.TaxID = p.TaxID
		}),
	},
	entity.RoleSeller: {
		1: handlerFor(func(u *entity.User, p sellerBrandInfo) {
			mergeCompany(&u.Profile.Company, p.CompanyName, p.Website, p.LogoURL, "", "", p.Description, 0)
			u.SellerExtra.Categories = p.Categories
			u.SellerExtra.Currencies = p.Currencies
		}),
		2: handlerFor(func(u *entity.User, p sellerBusinessDetails) {
			mergeCompany(&u.Profile.Company, "", "", "", "", p.Size, "", p.FoundingYear)
			if p.MonthlyVolume != "" {
				u.SellerExtra.MonthlyVolume = p.MonthlyVolume
			}
			if p.WarehouseAddress != "" {
				u.SellerExtra.Warehouse.Address = p.WarehouseAddress
			}
			if p.WarehouseCity != "" {
				u.SellerExtra.Warehouse.City = p.WarehouseCity
			}
			if p.WarehouseCountry != "" {
				u.SellerExtra.Warehouse.Country = p.WarehouseCountry
			}
			if p.ShippingMethod != "" {
				u.SellerExtra.Shipping.Method = p.ShippingMethod
			}
			if len(p.ShippingRegions) > 0 {
				u.SellerExtra.Shipping.Regions = p.ShippingRegions
			}
		}),
		3: handlerFor(func(u *entity.User, p sellerContactInfo) {
			mergeContact(&u.Profile, p.FirstName, p.LastName, p.Phone, p.Address)
		}),
		4: handlerFor(func(u *entity.User, p sellerVerification) {
			u.Profile.Company.TradeLicense = p.TradeLicense
			u.Profile.Company.TaxID = p.TaxID
			u.SellerExtra.Bank = entity.BankDetails{
				BankName:      p.BankName,
				AccountName:   p.AccountName,
				AccountNumber: p.AccountNumber,
				IBAN:          p.IBAN,
				SwiftCode:     p.SwiftCode,
			}
		}),
	},
}

func mergeCompany(c *entity.Company, name, website, logoURL, industry, size, description string, foundingYear int) {
	if name != "" {
		c.Name = name
	}
	if website != "" {
		c.Website = website
	}
	if logoURL != "" {
		c.LogoURL = logoURL
	}
	if industry != "" {
		c.Industry = industry
	}
	if size != "" {
		c.Size = size
	}
	if description != "" {
		c.Description = description
	}
	if foundingYear != 0 {
		c.FoundingYear = foundingYear
	}
}

func mergeContact(p *entity.Profile, firstName, lastName, phone, address string) {
	if firstName != "" {
		p.FirstName = firstName
	}
	if lastName != "" {
		p.LastName = lastName
	}
	if phone != "" {
		p.Phone = phone
	}
	if address != "" {
		p.Address = address
	}
}

// SubmitStep records one onboarding step for the user. The caller's role
// must match the endpoint's expected role, and the step must be inside the
// role's range; steps are not required to arrive in order. Submitting the
// final step completes onboarding.
func (s *OnboardingService) SubmitStep(ctx context.Context, userID string, expectedRole entity.Role, step int, raw json.RawMessage) (*entity.User, error) {
	handlers, ok := onboardingSteps[expectedRole]
	if !ok {
		return nil, ErrForbiddenRole
	}
	handler, ok := handlers[step]
	if !ok {
		return nil, ErrInvalidStep
	}

	apply, err := handler(raw)
	if err != nil {
		return nil, err
	}

	var completedNow bool
	u, err := mutateUser(ctx, s.Repo, userID, func(u *entity.User) error {
		if u.Role != expectedRole {
			return ErrForbiddenRole
		}
		apply(u)
		u.OnboardingStep = step
		if step == entity.FinalOnboardingStep(u.Role) && !u.OnboardingCompleted {
			s.complete(u)
			completedNow = true
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if completedNow {
		s.notifyCompletion(ctx, u)
	}
	return u, nil
}

// Complete force-completes onboarding independent of the last recorded
// step, provided the required profile fields are present.
func (s *OnboardingService) Complete(ctx context.Context, userID string) (*entity.User, error) {
	var completedNow bool
	u, err := mutateUser(ctx, s.Repo, userID, func(u *entity.User) error {
		if u.Profile.FirstName == "" || u.Profile.LastName == "" || u.Profile.Company.Name == "" {
			return ErrIncompleteProfile
		}
		if !u.OnboardingCompleted {
			s.complete(u)
			completedNow = true
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if completedNow {
		s.notifyCompletion(ctx, u)
	}
	return u, nil
}

// complete flips the one-shot completion flag and applies the role's
// terminal onboarding status: sellers are auto-approved, buyers remain
// pending for manual review.
func (s *OnboardingService) complete(u *entity.User) {
	u.OnboardingCompleted = true
	switch u.Role {
	case entity.RoleSeller:
		u.Status = entity.StatusApproved
	case entity.RoleBuyer:
		u.Status = entity.StatusPending
	}
}

func (s *OnboardingService) notifyCompletion(ctx context.Context, u *entity.User) {
	if u.Role != entity.RoleSeller {
		return
	}
	if err := s.Notifier.SendWelcomeEmail(ctx, u.Email, u.Profile.FirstName, string(u.Role)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("send welcome email failed")
	}
}

// Status returns the onboarding projection for resuming a partial flow.
func (s *OnboardingService) Status(ctx context.Context, userID string) (*StatusProjection, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	p := &StatusProjection{
		Role:      u.Role,
		Status:    u.Status,
		Step:      u.OnboardingStep,
		Completed: u.OnboardingCompleted,
		Profile:   u.Profile,
	}
	if u.Role == entity.RoleSeller {
		extra := u.SellerExtra
		p.SellerExtra = &extra
	}
	return p, nil
}
