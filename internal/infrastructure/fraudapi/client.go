package fraudapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/fraudwatch/internal/domain/entity"
	"github.com/oksasatya/fraudwatch/internal/domain/repository"
	"github.com/oksasatya/fraudwatch/pkg/metrics"
)

// Upstream feed paths. Each responds with a JSON array whose first element holds the records.
const (
	appsPath   = "/fraud-apps"
	urlsPath   = "/fraud-url"
	trendsPath = "/fraud-trends"
)

// StatusError is returned for non-retryable upstream responses.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fraud api %s: unexpected status %d", e.Path, e.Code)
}

// Client reads the upstream fraud feeds.
type Client struct {
	BaseURL    string
	HTTP       *http.Client
	MaxRetries uint64
	RetryBase  time.Duration
	Logger     logrus.FieldLogger
}

func NewClient(baseURL string, timeout time.Duration, logger logrus.FieldLogger) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTP:       &http.Client{Timeout: timeout},
		MaxRetries: 3,
		RetryBase:  200 * time.Millisecond,
		Logger:     logger,
	}
}

type rawApp struct {
	AppName    string `json:"app_name"`
	Developer  string `json:"developer"`
	Category   string `json:"category"`
	RiskLevel  string `json:"risk_level"`
	ReportedOn string `json:"reported_on"`
}

type rawURL struct {
	URL        string `json:"url"`
	RiskLevel  string `json:"risk_level"`
	DetectedOn string `json:"detected_on"`
	Category   string `json:"category"`
}

// Apps returns the flagged applications with missing fields defaulted.
func (c *Client) Apps(ctx context.Context) ([]entity.FraudApp, error) {
	var payload struct {
		FraudulentApps []rawApp `json:"fraudulent_apps"`
	}
	if err := c.getFirst(ctx, appsPath, &payload); err != nil {
		return nil, err
	}
	out := []entity.FraudApp{}
	for _, a := range payload.FraudulentApps {
		out = append(out, entity.FraudApp{
			AppName:    orDefault(a.AppName, "Unknown App"),
			Developer:  orDefault(a.Developer, "Unknown Developer"),
			Category:   orDefault(a.Category, "Unknown"),
			RiskLevel:  orDefault(a.RiskLevel, "Unknown"),
			ReportedOn: orDefault(a.ReportedOn, "Unknown"),
		})
	}
	return out, nil
}

// URLs returns the flagged URLs with missing fields defaulted.
func (c *Client) URLs(ctx context.Context) ([]entity.FraudURL, error) {
	var payload struct {
		FraudulentURLs []rawURL `json:"fraudulent_urls"`
	}
	if err := c.getFirst(ctx, urlsPath, &payload); err != nil {
		return nil, err
	}
	out := []entity.FraudURL{}
	for _, u := range payload.FraudulentURLs {
		out = append(out, entity.FraudURL{
			URL:        orDefault(u.URL, "Unknown URL"),
			RiskLevel:  orDefault(u.RiskLevel, "Unknown"),
			DetectedOn: orDefault(u.DetectedOn, "Unknown"),
			Category:   orDefault(u.Category, "Unknown"),
		})
	}
	return out, nil
}

// Trends returns the 30 day detection series as published upstream.
func (c *Client) Trends(ctx context.Context) ([]entity.FraudTrend, error) {
	var payload struct {
		Trends []entity.FraudTrend `json:"fraud_trends_30_days"`
	}
	if err := c.getFirst(ctx, trendsPath, &payload); err != nil {
		return nil, err
	}
	if payload.Trends == nil {
		return []entity.FraudTrend{}, nil
	}
	return payload.Trends, nil
}

// getFirst decodes the first element of the array served at path into dest.
// A body that is not an array, an empty array, or a first element of another
// shape leaves dest untouched.
func (c *Client) getFirst(ctx context.Context, path string, dest any) error {
	var raw json.RawMessage
	if err := c.getJSON(ctx, path, &raw); err != nil {
		return err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
		c.logShape(path)
		return nil
	}
	if err := json.Unmarshal(items[0], dest); err != nil {
		c.logShape(path)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	feed := strings.TrimPrefix(path, "/")
	backoff := retry.WithMaxRetries(c.MaxRetries, retry.NewExponential(c.RetryBase))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		res, err := c.HTTP.Do(req)
		if err != nil {
			c.logRetry(path, err)
			return retry.RetryableError(err)
		}
		defer func() { _ = res.Body.Close() }()

		if res.StatusCode >= http.StatusInternalServerError || res.StatusCode == http.StatusTooManyRequests {
			serr := &StatusError{Path: path, Code: res.StatusCode}
			c.logRetry(path, serr)
			return retry.RetryableError(serr)
		}
		if res.StatusCode != http.StatusOK {
			return &StatusError{Path: path, Code: res.StatusCode}
		}
		if err := json.NewDecoder(res.Body).Decode(dest); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		metrics.UpstreamFetches.WithLabelValues(feed, "error").Inc()
		return err
	}
	metrics.UpstreamFetches.WithLabelValues(feed, "ok").Inc()
	return nil
}

func (c *Client) logRetry(path string, err error) {
	if c.Logger == nil {
		return
	}
	c.Logger.WithError(err).WithField("path", path).Warn("fraud api request failed, retrying")
}

func (c *Client) logShape(path string) {
	if c.Logger == nil {
		return
	}
	c.Logger.WithField("path", path).Warn("fraud api returned an unexpected payload shape")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

var _ repository.FraudFeed = (*Client)(nil)
