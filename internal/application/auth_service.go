package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vendora/marketplace-api/internal/domain/entity"
	"github.com/vendora/marketplace-api/internal/domain/repository"
	"github.com/vendora/marketplace-api/pkg/helpers"
)

// AuthService owns the credential store and the session registry: user
// registration, credential verification, token issuance and rotation, and
// the single-use email-verification / password-reset flows.
type AuthService struct {
	Repo     repository.UserRepository
	JWT      *helpers.JWTManager
	Notifier Notifier
	Logger   *logrus.Logger

	MaxSessions    int
	VerifyTokenTTL time.Duration
	ResetTokenTTL  time.Duration
}

func NewAuthService(repo repository.UserRepository, jwt *helpers.JWTManager, notifier Notifier, logger *logrus.Logger, maxSessions int, verifyTTL, resetTTL time.Duration) *AuthService {
	return &AuthService{
		Repo:           repo,
		JWT:            jwt,
		Notifier:       notifier,
		Logger:         logger,
		MaxSessions:    maxSessions,
		VerifyTokenTTL: verifyTTL,
		ResetTokenTTL:  resetTTL,
	}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type RegisterInput struct {
	Email       string
	Password    string
	Role        entity.Role
	FirstName   string
	LastName    string
	Phone       string
	CompanyName string
}

// Register creates the user with a role-derived status, registers an
// initial session, and requests a verification email. Email delivery
// failure is logged, never fatal to registration.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, TokenPair, error) {
	if !entity.ValidRole(in.Role) {
		return nil, TokenPair{}, ErrForbiddenRole
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return nil, TokenPair{}, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, TokenPair{}, err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, TokenPair{}, err
	}

	u := &entity.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         in.Role,
		Status:       entity.StatusForRole(in.Role),
		Profile: entity.Profile{
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Phone:     in.Phone,
			Company:   entity.Company{Name: in.CompanyName},
		},
	}

	verifyToken, err := s.JWT.IssuePurposeToken(u.ID, helpers.PurposeEmailVerification, s.VerifyTokenTTL)
	if err != nil {
		return nil, TokenPair{}, err
	}
	u.EmailVerificationToken = verifyToken

	pair, err := s.issuePair(u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	u.AddSession(pair.RefreshToken, s.MaxSessions)
	now := time.Now()
	u.LastLogin = &now

	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, TokenPair{}, ErrDuplicateEmail
		}
		return nil, TokenPair{}, err
	}

	if err := s.Notifier.SendEmailVerification(ctx, u.Email, verifyToken); err != nil {
		s.logWarn(err, logrus.Fields{"user_id": u.ID}, "send verification email failed")
	}

	return u, pair, nil
}

// Login verifies credentials and registers a new session. Unknown email
// and wrong password produce the same error; failed attempts never mutate
// account status.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	u, err := s.Repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, TokenPair{}, ErrInvalidCredentials
		}
		return nil, TokenPair{}, err
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	switch u.Status {
	case entity.StatusSuspended:
		return nil, TokenPair{}, ErrAccountSuspended
	case entity.StatusRejected:
		return nil, TokenPair{}, ErrAccountRejected
	}

	pair, err := s.issuePair(u)
	if err != nil {
		return nil, TokenPair{}, err
	}

	saved, err := mutateUser(ctx, s.Repo, u.ID, func(cur *entity.User) error {
		cur.AddSession(pair.RefreshToken, s.MaxSessions)
		now := time.Now()
		cur.LastLogin = &now
		return nil
	})
	if err != nil {
		return nil, TokenPair{}, err
	}
	return saved, pair, nil
}

// Refresh rotates a refresh token: the presented token must be
// cryptographically valid and present in the user's session registry.
// Reuse of an already-rotated token fails with ErrInvalidToken.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.VerifyRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, helpers.ErrExpiredToken) {
			return TokenPair{}, ErrExpiredToken
		}
		return TokenPair{}, ErrInvalidToken
	}

	var pair TokenPair
	_, err = mutateUser(ctx, s.Repo, claims.UserID, func(u *entity.User) error {
		if !u.HasSession(refreshToken) {
			return ErrInvalidToken
		}
		p, perr := s.issuePair(u)
		if perr != nil {
			return perr
		}
		u.RemoveSession(refreshToken)
		u.AddSession(p.RefreshToken, s.MaxSessions)
		pair = p
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, ErrInvalidToken
		}
		return TokenPair{}, err
	}
	return pair, nil
}

// Logout revokes exactly one refresh token; revoking an absent token is a
// no-op.
func (s *AuthService) Logout(ctx context.Context, userID, refreshToken string) error {
	_, err := mutateUser(ctx, s.Repo, userID, func(u *entity.User) error {
		u.RemoveSession(refreshToken)
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

type CompanyPatch struct {
	Name         string
	Website      string
	Industry     string
	Size         string
	Description  string
	FoundingYear int
}

// UpdateProfileInput carries only non-identity, non-privileged fields;
// email, password, role, and status cannot be patched here by
// construction.
type UpdateProfileInput struct {
	FirstName string
	LastName  string
	Phone     string
	Address   string
	Company   CompanyPatch
}

// UpdateProfile merges non-empty patch fields into the profile.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := mutateUser(ctx, s.Repo, userID, func(u *entity.User) error {
		applyPatch(&u.Profile, in)
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func applyPatch(p *entity.Profile, in UpdateProfileInput) {
	if in.FirstName != "" {
		p.FirstName = in.FirstName
	}
	if in.LastName != "" {
		p.LastName = in.LastName
	}
	if in.Phone != "" {
		p.Phone = in.Phone
	}
	if in.Address != "" {
		p.Address = in.Address
	}
	if in.Company.Name != "" {
		p.Company.Name = in.Company.Name
	}
	if in.Company.Website != "" {
		p.Company.Website = in.Company.Website
	}
	if in.Company.Industry != "" {
		p.Company.Industry = in.Company.Industry
	}
	if in.Company.Size != "" {
		p.Company.Size = in.Company.Size
	}
	if in.Company.Description != "" {
		p.Company.Description = in.Company.Description
	}
	if in.Company.FoundingYear != 0 {
		p.Company.FoundingYear = in.Company.FoundingYear
	}
}

// RequestPasswordReset issues a time-boxed single-use reset token. The
// caller always receives success so account existence cannot be probed.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.Repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logWarn(err, logrus.Fields{}, "password reset lookup failed")
		}
		return nil
	}

	token, err := s.JWT.IssuePurposeToken(u.ID, helpers.PurposePasswordReset, s.ResetTokenTTL)
	if err != nil {
		s.logWarn(err, logrus.Fields{"user_id": u.ID}, "issue reset token failed")
		return nil
	}
	expires := time.Now().Add(s.ResetTokenTTL)

	if _, err := mutateUser(ctx, s.Repo, u.ID, func(cur *entity.User) error {
		cur.PasswordResetToken = token
		cur.PasswordResetExpires = &expires
		return nil
	}); err != nil {
		s.logWarn(err, logrus.Fields{"user_id": u.ID}, "store reset token failed")
		return nil
	}

	if err := s.Notifier.SendPasswordReset(ctx, u.Email, token); err != nil {
		s.logWarn(err, logrus.Fields{"user_id": u.ID}, "send reset email failed")
	}
	return nil
}

// ConfirmPasswordReset sets a new password and clears every active
// session, forcing re-authentication everywhere.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	claims, err := s.JWT.VerifyPurposeToken(token, helpers.PurposePasswordReset)
	if err != nil {
		if errors.Is(err, helpers.ErrExpiredToken) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}

	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}

	_, err = mutateUser(ctx, s.Repo, claims.UserID, func(u *entity.User) error {
		if u.PasswordResetToken == "" || u.PasswordResetToken != token {
			return ErrInvalidToken
		}
		if u.PasswordResetExpires == nil || time.Now().After(*u.PasswordResetExpires) {
			return ErrExpiredToken
		}
		u.PasswordHash = hash
		u.PasswordResetToken = ""
		u.PasswordResetExpires = nil
		u.ClearSessions()
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidToken
	}
	return err
}

// VerifyEmail marks the email verified and consumes the single-use token.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.JWT.VerifyPurposeToken(token, helpers.PurposeEmailVerification)
	if err != nil {
		if errors.Is(err, helpers.ErrExpiredToken) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}

	_, err = mutateUser(ctx, s.Repo, claims.UserID, func(u *entity.User) error {
		if u.EmailVerificationToken == "" || u.EmailVerificationToken != token {
			return ErrInvalidToken
		}
		u.EmailVerified = true
		u.EmailVerificationToken = ""
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidToken
	}
	return err
}

// ResendVerification re-issues the verification token. Like the reset
// request, the response is identical whether or not the email exists.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	u, err := s.Repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logWarn(err, logrus.Fields{}, "resend verification lookup failed")
		}
		return nil
	}
	if u.EmailVerified {
		return nil
	}

	token, err := s.JWT.IssuePurposeToken(u.ID, helpers.PurposeEmailVerification, s.VerifyTokenTTL)
	if err != nil {
		s.logWarn(err, logrus.Fields{"user_id": u.ID}, "issue verification token failed")
		return nil
	}

	if _, err := mutateUser(ctx, s.Repo, u.ID, func(cur *entity.User) error {
		cur.EmailVerificationToken = token
		return nil
	}); err != nil {
		s.logWarn(err, logrus.Fields{"user_id": u.ID}, "store verification token failed")
		return nil
	}

	if err := s.Notifier.SendEmailVerification(ctx, u.Email, token); err != nil {
		s.logWarn(err, logrus.Fields{"user_id": u.ID}, "send verification email failed")
	}
	return nil
}

func (s *AuthService) issuePair(u *entity.User) (TokenPair, error) {
	access, aexp, err := s.JWT.IssueAccessToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.IssueRefreshToken(u.ID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:        access,
		AccessTokenExpiry:  aexp,
		RefreshToken:       refresh,
		RefreshTokenExpiry: rexp,
	}, nil
}

func (s *AuthService) logWarn(err error, fields logrus.Fields, msg string) {
	if s.Logger == nil {
		return
	}
	s.Logger.WithError(err).WithFields(fields).Warn(msg)
}
