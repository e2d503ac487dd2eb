package application

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/oksasatya/fraudwatch/internal/domain/entity"
	repo "github.com/oksasatya/fraudwatch/internal/domain/repository"
	"github.com/oksasatya/fraudwatch/pkg/helpers"
	"github.com/oksasatya/fraudwatch/pkg/metrics"
)

const (
	cacheKeyApps   = "fraud:apps"
	cacheKeyURLs   = "fraud:urls"
	cacheKeyTrends = "fraud:trends"
)

// SearchHit is one fraud record returned by the search index.
type SearchHit struct {
	Kind   string         `json:"kind"`
	ID     string         `json:"id"`
	Source map[string]any `json:"source"`
}

// RecordIndex stores fraud records for full text search.
type RecordIndex interface {
	IndexApps(ctx context.Context, apps []entity.FraudApp) error
	IndexURLs(ctx context.Context, urls []entity.FraudURL) error
	Search(ctx context.Context, q string, size int) ([]SearchHit, error)
}

// ReportStore persists exported reports and returns their URL.
type ReportStore interface {
	Put(ctx context.Context, objectPath, contentType string, body []byte) (string, error)
}

// Report is the exported dashboard snapshot.
type Report struct {
	ID          string              `json:"id"`
	GeneratedAt time.Time           `json:"generated_at"`
	GeneratedBy string              `json:"generated_by"`
	Summary     entity.FraudSummary `json:"summary"`
	Apps        []entity.FraudApp   `json:"apps"`
	URLs        []entity.FraudURL   `json:"urls"`
	Trends      []entity.FraudTrend `json:"trends"`
}

// FraudService serves upstream fraud data to the dashboard.
type FraudService struct {
	Feed     repo.FraudFeed
	Redis    redis.Cmdable
	CacheTTL time.Duration
	Index    RecordIndex
	Reports  ReportStore
	Logger   logrus.FieldLogger
}

func NewFraudService(feed repo.FraudFeed, rdb redis.Cmdable, ttl time.Duration, index RecordIndex, reports ReportStore, logger logrus.FieldLogger) *FraudService {
	return &FraudService{Feed: feed, Redis: rdb, CacheTTL: ttl, Index: index, Reports: reports, Logger: logger}
}

func (s *FraudService) Apps(ctx context.Context) ([]entity.FraudApp, error) {
	return cached(ctx, s, cacheKeyApps, "apps", s.Feed.Apps, func(ctx context.Context, apps []entity.FraudApp) error {
		if s.Index == nil {
			return nil
		}
		return s.Index.IndexApps(ctx, apps)
	})
}

func (s *FraudService) URLs(ctx context.Context) ([]entity.FraudURL, error) {
	return cached(ctx, s, cacheKeyURLs, "urls", s.Feed.URLs, func(ctx context.Context, urls []entity.FraudURL) error {
		if s.Index == nil {
			return nil
		}
		return s.Index.IndexURLs(ctx, urls)
	})
}

func (s *FraudService) Trends(ctx context.Context) ([]entity.FraudTrend, error) {
	return cached(ctx, s, cacheKeyTrends, "trends", s.Feed.Trends, nil)
}

// Refresh drops the cached feeds and reloads them, which also reindexes the records.
func (s *FraudService) Refresh(ctx context.Context) error {
	if s.Redis != nil {
		if err := helpers.RedisDel(ctx, s.Redis, cacheKeyApps, cacheKeyURLs, cacheKeyTrends); err != nil {
			return fmt.Errorf("drop fraud cache: %w", err)
		}
	}
	_, err := s.loadAll(ctx)
	return err
}

type dashboardData struct {
	apps   []entity.FraudApp
	urls   []entity.FraudURL
	trends []entity.FraudTrend
}

func (s *FraudService) loadAll(ctx context.Context) (dashboardData, error) {
	var data dashboardData
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		apps, err := s.Apps(ctx)
		data.apps = apps
		return err
	})
	g.Go(func() error {
		urls, err := s.URLs(ctx)
		data.urls = urls
		return err
	})
	g.Go(func() error {
		trends, err := s.Trends(ctx)
		data.trends = trends
		return err
	})

	if err := g.Wait(); err != nil {
		return dashboardData{}, err
	}
	return data, nil
}

// Summary returns the overview figures for the dashboard.
func (s *FraudService) Summary(ctx context.Context) (entity.FraudSummary, error) {
	data, err := s.loadAll(ctx)
	if err != nil {
		return entity.FraudSummary{}, err
	}
	return Summarize(data.apps, data.urls, data.trends), nil
}

// Summarize computes the dashboard overview from the three feeds.
func Summarize(apps []entity.FraudApp, urls []entity.FraudURL, trends []entity.FraudTrend) entity.FraudSummary {
	sum := entity.FraudSummary{
		TotalApps:      len(apps),
		TotalURLs:      len(urls),
		URLsByRisk:     map[string]int{"high": 0, "medium": 0, "low": 0},
		URLsByCategory: map[string]int{"phishing": 0, "malware": 0, "scams": 0},
		TrendDays:      len(trends),
	}

	for _, u := range urls {
		risk := strings.ToLower(u.RiskLevel)
		if _, ok := sum.URLsByRisk[risk]; ok {
			sum.URLsByRisk[risk]++
		}
		cat := strings.ToLower(u.Category)
		switch {
		case cat == "phishing":
			sum.URLsByCategory["phishing"]++
		case cat == "malware":
			sum.URLsByCategory["malware"]++
		case strings.Contains(cat, "scam"):
			sum.URLsByCategory["scams"]++
		}
	}

	for i, t := range trends {
		sum.TotalCases += t.FraudCasesDetected
		if i == 0 || t.FraudCasesDetected > sum.PeakDayCases {
			sum.PeakDayCases = t.FraudCasesDetected
			sum.PeakDay = t.Date
		}
	}
	if len(trends) > 0 {
		sum.AverageDaily = int(math.Round(float64(sum.TotalCases) / float64(len(trends))))
	}
	return sum
}

// Search queries indexed fraud records. Without an index it returns no hits.
func (s *FraudService) Search(ctx context.Context, q string, size int) ([]SearchHit, error) {
	if s.Index == nil || strings.TrimSpace(q) == "" {
		return []SearchHit{}, nil
	}
	switch {
	case size <= 0:
		size = 10
	case size > 50:
		size = 50
	}
	return s.Index.Search(ctx, q, size)
}

// ExportReport uploads a JSON snapshot of the dashboard and returns its URL.
func (s *FraudService) ExportReport(ctx context.Context, requestedBy string) (*Report, string, error) {
	if s.Reports == nil {
		return nil, "", ErrExportUnavailable
	}
	data, err := s.loadAll(ctx)
	if err != nil {
		return nil, "", err
	}
	report := &Report{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		GeneratedBy: requestedBy,
		Summary:     Summarize(data.apps, data.urls, data.trends),
		Apps:        data.apps,
		URLs:        data.urls,
		Trends:      data.trends,
	}
	body, err := json.Marshal(report)
	if err != nil {
		return nil, "", err
	}
	url, err := s.Reports.Put(ctx, "reports/"+report.ID+".json", "application/json", body)
	if err != nil {
		return nil, "", fmt.Errorf("upload report: %w", err)
	}
	return report, url, nil
}

// cached reads key from redis, falling back to fetch and storing the result.
// onFetch runs only for fresh upstream data; its errors are logged, not returned.
func cached[T any](
	ctx context.Context,
	s *FraudService,
	key, feed string,
	fetch func(context.Context) ([]T, error),
	onFetch func(context.Context, []T) error,
) ([]T, error) {
	if s.Redis != nil {
		var out []T
		ok, err := helpers.RedisGetJSON(ctx, s.Redis, key, &out)
		if err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("key", key).Warn("fraud cache read failed")
		}
		if ok {
			metrics.FraudCacheLookups.WithLabelValues(feed, "hit").Inc()
			return out, nil
		}
		metrics.FraudCacheLookups.WithLabelValues(feed, "miss").Inc()
	}

	items, err := fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUpstream, feed, err)
	}

	if s.Redis != nil && s.CacheTTL > 0 {
		if err := helpers.RedisSetJSON(ctx, s.Redis, key, items, s.CacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("key", key).Warn("fraud cache write failed")
		}
	}
	if onFetch != nil {
		if err := onFetch(ctx, items); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("feed", feed).Warn("fraud record indexing failed")
		}
	}
	return items, nil
}
