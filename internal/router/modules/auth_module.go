package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vendora/marketplace-api/internal/container"
	"github.com/vendora/marketplace-api/internal/domain/repository"
	handlers "github.com/vendora/marketplace-api/internal/interface/http"
	"github.com/vendora/marketplace-api/internal/interface/middleware"
	"github.com/vendora/marketplace-api/pkg/helpers"
)

// AuthModule registers the /auth surface.
// Public: register, login, refresh-token, password-reset/*, verify-email,
// resend-verification. Protected: logout, profile.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Repo    repository.UserRepository
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, repo repository.UserRepository, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, Repo: repo, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	// Public endpoints with per-IP rate limits; the credential and reset
	// paths get the tightest budgets.
	registerLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	refreshLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	resetLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	verifyLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	auth := rg.Group("/auth")
	auth.POST("/register", registerLimiter, m.Handler.Register)
	auth.POST("/login", loginLimiter, m.Handler.Login)
	auth.POST("/refresh-token", refreshLimiter, m.Handler.Refresh)
	auth.POST("/password-reset/request", resetLimiter, m.Handler.RequestPasswordReset)
	auth.POST("/password-reset/confirm", verifyLimiter, m.Handler.ConfirmPasswordReset)
	auth.POST("/verify-email", verifyLimiter, m.Handler.VerifyEmail)
	auth.POST("/resend-verification", resetLimiter, m.Handler.ResendVerification)

	// Protected
	protected := auth.Group("/")
	protected.Use(middleware.Authenticate(m.Repo, m.JWT))
	protected.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		protected.POST("/logout", m.Handler.Logout)
		protected.GET("/profile", m.Handler.GetProfile)
		protected.PUT("/profile", m.Handler.UpdateProfile)
	}
}
