package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vendora/marketplace-api/internal/application"
	"github.com/vendora/marketplace-api/internal/domain/entity"
	"github.com/vendora/marketplace-api/internal/interface/middleware"
	"github.com/vendora/marketplace-api/pkg/response"
	"github.com/vendora/marketplace-api/pkg/validation"
)

type OnboardingHandler struct {
	Svc    *application.OnboardingService
	Logger *logrus.Logger
}

func NewOnboardingHandler(svc *application.OnboardingService, logger *logrus.Logger) *OnboardingHandler {
	return &OnboardingHandler{Svc: svc, Logger: logger}
}

// stepRequest wraps every onboarding step submission: the step number
// selects the typed payload schema the service validates data against.
type stepRequest struct {
	Step int             `json:"step" binding:"required"`
	Data json.RawMessage `json:"data"`
}

// Status GET /onboarding/status
func (h *OnboardingHandler) Status(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	proj, err := h.Svc.Status(c.Request.Context(), uid)
	if err != nil {
		h.fail(c, err, "fetch onboarding status failed")
		return
	}
	response.JSON(c, http.StatusOK, proj)
}

// SubmitBuyerStep POST /onboarding/buyer
func (h *OnboardingHandler) SubmitBuyerStep(c *gin.Context) {
	h.submitStep(c, entity.RoleBuyer)
}

// SubmitSellerStep POST /onboarding/seller
func (h *OnboardingHandler) SubmitSellerStep(c *gin.Context) {
	h.submitStep(c, entity.RoleSeller)
}

func (h *OnboardingHandler) submitStep(c *gin.Context, role entity.Role) {
	var req stepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.SubmitStep(c.Request.Context(), uid, role, req.Step, req.Data)
	if err != nil {
		h.fail(c, err, "submit onboarding step failed")
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"user":                u,
		"onboardingStep":      u.OnboardingStep,
		"onboardingCompleted": u.OnboardingCompleted,
	})
}

// Complete POST /onboarding/complete
func (h *OnboardingHandler) Complete(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.Complete(c.Request.Context(), uid)
	if err != nil {
		h.fail(c, err, "complete onboarding failed")
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"user":                u,
		"onboardingCompleted": u.OnboardingCompleted,
	})
}

func (h *OnboardingHandler) fail(c *gin.Context, err error, logMsg string) {
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
