package entity

import (
	"time"
)

// User is the aggregate root for the identity domain.
// Passwords are stored as bcrypt hashes in PasswordHash; token and session
// fields are never serialized outward.
type User struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"-"`
	Role         Role    `json:"role"`
	Status       Status  `json:"status"`
	Profile      Profile `json:"profile"`

	// SellerExtra is populated only through seller onboarding steps.
	SellerExtra SellerExtra `json:"sellerExtra,omitempty"`

	OnboardingStep      int  `json:"onboardingStep"`
	OnboardingCompleted bool `json:"onboardingCompleted"`

	EmailVerified          bool   `json:"emailVerified"`
	EmailVerificationToken string `json:"-"`

	PasswordResetToken   string     `json:"-"`
	PasswordResetExpires *time.Time `json:"-"`

	// RefreshTokens is the session registry: the ordered set of currently
	// valid refresh tokens for this user. A refresh token is only trusted
	// if it is both cryptographically valid and present here.
	RefreshTokens []string `json:"-"`

	LastLogin *time.Time `json:"lastLogin,omitempty"`

	// Version guards concurrent read-modify-write cycles (refresh rotation).
	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Profile holds the free-form personal and company data collected
// incrementally by onboarding steps. Missing fields stay untouched on merge.
type Profile struct {
	FirstName string  `json:"firstName,omitempty"`
	LastName  string  `json:"lastName,omitempty"`
	Phone     string  `json:"phone,omitempty"`
	Address   string  `json:"address,omitempty"`
	Company   Company `json:"company"`
}

type Company struct {
	Name         string `json:"name,omitempty"`
	Website      string `json:"website,omitempty"`
	LogoURL      string `json:"logoUrl,omitempty"`
	Industry     string `json:"industry,omitempty"`
	Size         string `json:"size,omitempty"`
	Description  string `json:"description,omitempty"`
	FoundingYear int    `json:"foundingYear,omitempty"`
	TradeLicense string `json:"tradeLicense,omitempty"`
	TaxID        string `json:"taxId,omitempty"`
}

// SellerExtra carries the seller-only onboarding data.
type SellerExtra struct {
	Categories    []string    `json:"categories,omitempty"`
	Currencies    []string    `json:"currencies,omitempty"`
	MonthlyVolume string      `json:"monthlyVolume,omitempty"`
	Warehouse     Warehouse   `json:"warehouse"`
	Shipping      Shipping    `json:"shipping"`
	Bank          BankDetails `json:"bank"`
}

type Warehouse struct {
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

type Shipping struct {
	Method  string   `json:"method,omitempty"`
	Regions []string `json:"regions,omitempty"`
}

type BankDetails struct {
	BankName      string `json:"bankName,omitempty"`
	AccountName   string `json:"accountName,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	IBAN          string `json:"iban,omitempty"`
	SwiftCode     string `json:"swiftCode,omitempty"`
}

// HasSession reports whether the given refresh token is registered.
func (u *User) HasSession(token string) bool {
	for _, t := range u.RefreshTokens {
		if t == token {
			return true
		}
	}
	return false
}

// AddSession appends a refresh token, evicting the oldest entries so the
// set never exceeds max.
func (u *User) AddSession(token string, max int) {
	u.RefreshTokens = append(u.RefreshTokens, token)
	if max > 0 && len(u.RefreshTokens) > max {
		u.RefreshTokens = u.RefreshTokens[len(u.RefreshTokens)-max:]
	}
}

// RemoveSession drops exactly one occurrence of token; no-op if absent.
func (u *User) RemoveSession(token string) {
	for i, t := range u.RefreshTokens {
		if t == token {
			u.RefreshTokens = append(u.RefreshTokens[:i], u.RefreshTokens[i+1:]...)
			return
		}
	}
}

// ClearSessions revokes every refresh token, forcing re-authentication
// on all devices.
func (u *User) ClearSessions() {
	// Non-nil so the registry round-trips as an empty array, not NULL.
	u.RefreshTokens = []string{}
}
