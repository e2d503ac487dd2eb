package repository

import (
	"context"

	"github.com/oksasatya/fraudwatch/internal/domain/entity"
)

// FraudFeed is the upstream source of fraud records.
type FraudFeed interface {
	Apps(ctx context.Context) ([]entity.FraudApp, error)
	URLs(ctx context.Context) ([]entity.FraudURL, error)
	Trends(ctx context.Context) ([]entity.FraudTrend, error)
}
