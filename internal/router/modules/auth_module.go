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

// AuthModule wires account routes.
// Public: POST /api/signup, POST /api/signin, POST /api/signout
// Protected: GET /api/me
type AuthModule struct {
	Handler     *handlers.AuthHandler
	JWT         *helpers.JWTManager
	Redis       redis.Cmdable
	SignupLimit int
	SigninLimit int
	Logger      logrus.FieldLogger
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager, rdb redis.Cmdable, signupLimit, signinLimit int, logger logrus.FieldLogger) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt, Redis: rdb, SignupLimit: signupLimit, SigninLimit: signinLimit, Logger: logger}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	signupLimiter := middleware.RateLimit(m.Redis, m.SignupLimit, time.Minute, middleware.KeyByIPAndPath(), nil)
	signinLimiter := middleware.RateLimit(m.Redis, m.SigninLimit, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/signup", signupLimiter, m.Handler.Signup)
	rg.POST("/signin", signinLimiter, m.Handler.Signin)
	rg.POST("/signout", m.Handler.Signout)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT, m.Logger))
	auth.Use(middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/me", m.Handler.Me)
	}
}
