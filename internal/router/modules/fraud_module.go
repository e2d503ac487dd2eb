package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/fraudwatch/internal/interface/http"
	"github.com/oksasatya/fraudwatch/internal/interface/middleware"
	"github.com/oksasatya/fraudwatch/pkg/helpers"
)

// FraudModule serves the dashboard data under /api/fraud. Every route needs a session.
type FraudModule struct {
	Handler *handlers.FraudHandler
	JWT     *helpers.JWTManager
	Redis   redis.Cmdable
	Logger  logrus.FieldLogger
}

func NewFraudModule(h *handlers.FraudHandler, jwt *helpers.JWTManager, rdb redis.Cmdable, logger logrus.FieldLogger) *FraudModule {
	return &FraudModule{Handler: h, JWT: jwt, Redis: rdb, Logger: logger}
}

func (m *FraudModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/fraud")
	g.Use(middleware.Auth(m.JWT, m.Logger))
	g.Use(middleware.RateLimit(m.Redis, 300, time.Minute, middleware.KeyByUserID(), nil))
	{
		g.GET("/apps", m.Handler.Apps)
		g.GET("/urls", m.Handler.URLs)
		g.GET("/trends", m.Handler.Trends)
		g.GET("/summary", m.Handler.Summary)
		g.GET("/search", m.Handler.Search)
	}

	// upstream-heavy writes get a tighter budget
	heavy := middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByUserID(), nil)
	g.POST("/refresh", heavy, m.Handler.Refresh)
	g.POST("/reports", heavy, m.Handler.ExportReport)
}
