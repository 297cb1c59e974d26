package router

import (
	"github.com/vendora/marketplace-api/internal/application"
	"github.com/vendora/marketplace-api/internal/container"
	pginfra "github.com/vendora/marketplace-api/internal/infrastructure/postgres"
	handlers "github.com/vendora/marketplace-api/internal/interface/http"
	"github.com/vendora/marketplace-api/internal/router/modules"
	"github.com/vendora/marketplace-api/pkg/mailer"
)

// InitModules wires the auth and onboarding modules from container
// singletons and registers them with the router registry. Called once
// during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	repo := pginfra.NewUserRepository(container.GetPGPool())
	notifier := mailer.NewQueueNotifier(container.GetRabbitPub(), cfg.VerifyEmailURL, cfg.ResetPasswordURL)

	authSvc := application.NewAuthService(
		repo,
		container.GetJWT(),
		notifier,
		logger,
		cfg.MaxSessionsPerUser,
		cfg.VerifyTokenTTL,
		cfg.ResetTokenTTL,
	)
	onboardingSvc := application.NewOnboardingService(repo, notifier, logger)

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(authSvc, logger), repo, container.GetJWT()))
	r.Add(modules.NewOnboardingModule(handlers.NewOnboardingHandler(onboardingSvc, logger), repo, container.GetJWT()))
}
