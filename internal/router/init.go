package router

import (
	"github.com/oksasatya/fraudwatch/internal/application"
	"github.com/oksasatya/fraudwatch/internal/container"
	"github.com/oksasatya/fraudwatch/internal/infrastructure/fraudapi"
	pginfra "github.com/oksasatya/fraudwatch/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/fraudwatch/internal/interface/http"
	"github.com/oksasatya/fraudwatch/internal/router/modules"
)

func buildAuthModule(c *container.Container) *modules.AuthModule {
	repo := pginfra.NewUserRepository(c.Pool)
	service := application.NewAuthService(repo, c.JWT, c.Logger, c.Publisher(), c.Config.AppName)
	handler := handlers.NewAuthHandler(service, c.Logger, c.Config.CookieDomain, c.Config.CookieSecure)
	return modules.NewAuthModule(handler, c.JWT, c.Cache(), c.Config.SignupRateLimit, c.Config.SigninRateLimit, c.Logger)
}

func buildFraudModule(c *container.Container) *modules.FraudModule {
	feed := fraudapi.NewClient(c.Config.FraudAPIBaseURL, c.Config.FraudAPITimeout, c.Logger)
	service := application.NewFraudService(feed, c.Cache(), c.Config.FraudCacheTTL, c.RecordIndex(), c.ReportStore(), c.Logger)
	handler := handlers.NewFraudHandler(service, c.Logger)
	return modules.NewFraudModule(handler, c.JWT, c.Cache(), c.Logger)
}

// InitModules wires all feature modules from the container into the registry.
// Call once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	r.Add(buildAuthModule(c))
	r.Add(buildFraudModule(c))
	r.Add(modules.NewDebugModule(c.Cache(), c.Metrics, c.Config.DebugMetricsEnabled))
}
