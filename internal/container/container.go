package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/fraudwatch/config"
	"github.com/oksasatya/fraudwatch/internal/application"
	"github.com/oksasatya/fraudwatch/internal/infrastructure/search"
	gcsinfra "github.com/oksasatya/fraudwatch/internal/infrastructure/storage"
	"github.com/oksasatya/fraudwatch/pkg/helpers"
)

// Container carries the infrastructure built in main to the router.
// Optional clients are nil when their backing service is not configured.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	Pool   *pgxpool.Pool
	Redis  *redis.Client
	JWT    *helpers.JWTManager

	GCS       *storage.Client
	ES        *elasticsearch.Client
	RabbitPub *helpers.RabbitPublisher

	// Metrics is the registry served at /api/metrics.
	Metrics *prometheus.Registry
}

// Cache returns the redis client as an interface, nil when redis is not configured.
func (c *Container) Cache() redis.Cmdable {
	if c.Redis == nil {
		return nil
	}
	return c.Redis
}

// Publisher returns the welcome mail publisher only when sending is enabled.
func (c *Container) Publisher() application.EventPublisher {
	if c.RabbitPub == nil || c.Config == nil || !c.Config.MailSendEnabled {
		return nil
	}
	return c.RabbitPub
}

func (c *Container) RecordIndex() application.RecordIndex {
	if c.ES == nil {
		return nil
	}
	return search.NewFraudIndex(c.ES, c.Config.ESFraudIndex, c.Logger)
}

func (c *Container) ReportStore() application.ReportStore {
	if c.GCS == nil || c.Config.GCSBucket == "" {
		return nil
	}
	return gcsinfra.NewGCSReports(c.GCS, c.Config.GCSBucket)
}
