package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vendora/marketplace-api/internal/application"
	"github.com/vendora/marketplace-api/internal/domain/entity"
	"github.com/vendora/marketplace-api/internal/interface/middleware"
	"github.com/vendora/marketplace-api/pkg/response"
	"github.com/vendora/marketplace-api/pkg/validation"
)

// resetRequestedMsg is returned for password-reset and resend-verification
// requests regardless of whether the email exists.
const resetRequestedMsg = "if the email is registered, instructions have been sent"

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,pwd"`
	Role        string `json:"role" binding:"required,oneof=admin seller buyer"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Phone       string `json:"phone" binding:"omitempty,phone"`
	CompanyName string `json:"companyName"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type updateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone" binding:"omitempty,phone"`
	Address   string `json:"address"`
	Company   struct {
		Name         string `json:"name"`
		Website      string `json:"website" binding:"omitempty,url"`
		Industry     string `json:"industry"`
		Size         string `json:"size"`
		Description  string `json:"description"`
		FoundingYear int    `json:"foundingYear" binding:"omitempty,year"`
	} `json:"company"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,pwd"`
}

type tokenRequest struct {
	Token string `json:"token" binding:"required"`
}

func tokenPayload(u *entity.User, pair application.TokenPair) gin.H {
	return gin.H{
		"user":                 u,
		"accessToken":          pair.AccessToken,
		"accessTokenExpiresAt": pair.AccessTokenExpiry.Format(time.RFC3339),
		"refreshToken":         pair.RefreshToken,
	}
}

// Register POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, pair, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		Role:        entity.Role(req.Role),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		h.fail(c, err, "registration failed")
		return
	}
	response.JSON(c, http.StatusCreated, tokenPayload(u, pair))
}

// Login POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err, "login failed")
		return
	}
	response.JSON(c, http.StatusOK, tokenPayload(u, pair))
}

// Refresh POST /auth/refresh-token
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	pair, err := h.Svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.fail(c, err, "token refresh failed")
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"accessToken":          pair.AccessToken,
		"accessTokenExpiresAt": pair.AccessTokenExpiry.Format(time.RFC3339),
		"refreshToken":         pair.RefreshToken,
	})
}

// Logout POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.Logout(c.Request.Context(), uid, req.RefreshToken); err != nil {
		h.fail(c, err, "logout failed")
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"loggedOut": true})
}

// GetProfile GET /auth/profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		h.fail(c, err, "fetch profile failed")
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"user": u})
}

// UpdateProfile PUT /auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.UpdateProfile(c.Request.Context(), uid, application.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
		Company: application.CompanyPatch{
			Name:         req.Company.Name,
			Website:      req.Company.Website,
			Industry:     req.Company.Industry,
			Size:         req.Company.Size,
			Description:  req.Company.Description,
			FoundingYear: req.Company.FoundingYear,
		},
	})
	if err != nil {
		h.fail(c, err, "update profile failed")
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"user": u})
}

// RequestPasswordReset POST /auth/password-reset/request
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.fail(c, err, "password reset request failed")
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": resetRequestedMsg})
}

// ConfirmPasswordReset POST /auth/password-reset/confirm
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req resetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.ConfirmPasswordReset(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		h.fail(c, err, "password reset failed")
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "password updated"})
}

// VerifyEmail POST /auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		h.fail(c, err, "email verification failed")
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"verified": true})
}

// ResendVerification POST /auth/resend-verification
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.ResendVerification(c.Request.Context(), req.Email); err != nil {
		h.fail(c, err, "resend verification failed")
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": resetRequestedMsg})
}

// fail maps application errors to HTTP statuses; anything unexpected is
// logged with context and surfaced as a generic 500.
func (h *AuthHandler) fail(c *gin.Context, err error, logMsg string) {
	var fieldsErr *validation.FieldsError
	if errors.As(err, &fieldsErr) {
		response.ValidationError(c, http.StatusBadRequest, "invalid payload", fieldsErr.Details)
		return
	}
	status, msg := statusForError(err)
	if status == http.StatusInternalServerError {
		if h.Logger != nil {
			h.Logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"path":       c.FullPath(),
			}).Error(logMsg)
		}
		response.Error(c, status, "internal error")
		return
	}
	response.Error(c, status, msg)
}

func statusForError(err error) (int, string) {
	var fieldsErr *validation.FieldsError
	switch {
	case errors.As(err, &fieldsErr):
		return http.StatusBadRequest, fieldsErr.Error()
	case errors.Is(err, application.ErrDuplicateEmail):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, application.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, application.ErrAccountSuspended),
		errors.Is(err, application.ErrAccountRejected),
		errors.Is(err, application.ErrForbiddenRole):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, application.ErrInvalidToken):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, application.ErrExpiredToken):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, application.ErrUserNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, application.ErrInvalidStep),
		errors.Is(err, application.ErrIncompleteProfile):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
