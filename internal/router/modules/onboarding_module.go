package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vendora/marketplace-api/internal/container"
	"github.com/vendora/marketplace-api/internal/domain/entity"
	"github.com/vendora/marketplace-api/internal/domain/repository"
	handlers "github.com/vendora/marketplace-api/internal/interface/http"
	"github.com/vendora/marketplace-api/internal/interface/middleware"
	"github.com/vendora/marketplace-api/pkg/helpers"
)

// OnboardingModule registers the /onboarding surface. Every route
// requires authentication; the step-submission routes additionally gate
// on the endpoint's role.
type OnboardingModule struct {
	Handler *handlers.OnboardingHandler
	Repo    repository.UserRepository
	JWT     *helpers.JWTManager
}

func NewOnboardingModule(h *handlers.OnboardingHandler, repo repository.UserRepository, jwt *helpers.JWTManager) *OnboardingModule {
	return &OnboardingModule{Handler: h, Repo: repo, JWT: jwt}
}

func (m *OnboardingModule) Register(rg *gin.RouterGroup) {
	onboarding := rg.Group("/onboarding")
	onboarding.Use(middleware.Authenticate(m.Repo, m.JWT))
	onboarding.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		onboarding.GET("/status", m.Handler.Status)
		onboarding.POST("/buyer", middleware.Authorize(entity.RoleBuyer), m.Handler.SubmitBuyerStep)
		onboarding.POST("/seller", middleware.Authorize(entity.RoleSeller), m.Handler.SubmitSellerStep)
		onboarding.POST("/complete", m.Handler.Complete)
	}
}
