package modules

import (
	"expvar"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/fraudwatch/internal/interface/middleware"
)

// DebugModule exposes health, expvar and prometheus endpoints.
type DebugModule struct {
	Redis    redis.Cmdable
	Gatherer prometheus.Gatherer
	Enabled  bool
}

func NewDebugModule(rdb redis.Cmdable, gatherer prometheus.Gatherer, enabled bool) *DebugModule {
	return &DebugModule{Redis: rdb, Gatherer: gatherer, Enabled: enabled}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if !m.Enabled {
		return
	}

	rl := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
	if m.Gatherer != nil {
		rg.GET("/metrics", rl, gin.WrapH(promhttp.HandlerFor(m.Gatherer, promhttp.HandlerOpts{})))
	}
}
