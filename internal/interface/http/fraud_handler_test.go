package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/fraudwatch/internal/application"
	"github.com/oksasatya/fraudwatch/internal/domain/entity"
	"github.com/oksasatya/fraudwatch/internal/interface/middleware"
)

type fixedFeed struct {
	err error
}

func (f fixedFeed) Apps(context.Context) ([]entity.FraudApp, error) {
	return []entity.FraudApp{{AppName: "QuickLoan", Developer: "Unknown Developer", Category: "Finance", RiskLevel: "High", ReportedOn: "2025-03-01"}}, f.err
}

func (f fixedFeed) URLs(context.Context) ([]entity.FraudURL, error) {
	return []entity.FraudURL{
		{URL: "http://a.test", RiskLevel: "High", Category: "Phishing"},
		{URL: "http://b.test", RiskLevel: "Low", Category: "Scam"},
	}, f.err
}

func (f fixedFeed) Trends(context.Context) ([]entity.FraudTrend, error) {
	return []entity.FraudTrend{{Date: "2025-03-01", FraudCasesDetected: 3}, {Date: "2025-03-02", FraudCasesDetected: 5}}, f.err
}

type uploadedReports struct{ paths []string }

func (u *uploadedReports) Put(_ context.Context, objectPath, _ string, _ []byte) (string, error) {
	u.paths = append(u.paths, objectPath)
	return "https://storage.example/" + objectPath, nil
}

func newFraudEngine(feed fixedFeed, reports application.ReportStore) *gin.Engine {
	logger, _ := test.NewNullLogger()
	svc := application.NewFraudService(feed, nil, time.Minute, nil, reports, logger)
	h := NewFraudHandler(svc, logger)

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	g := r.Group("/api/fraud", func(c *gin.Context) {
		c.Set(middleware.CtxUserEmailKey, "analyst@b.com")
		c.Next()
	})
	g.GET("/apps", h.Apps)
	g.GET("/urls", h.URLs)
	g.GET("/trends", h.Trends)
	g.GET("/summary", h.Summary)
	g.GET("/search", h.Search)
	g.POST("/refresh", h.Refresh)
	g.POST("/reports", h.ExportReport)
	return r
}

func TestFraudHandler_Feeds(t *testing.T) {
	r := newFraudEngine(fixedFeed{}, nil)

	w := doJSON(r, http.MethodGet, "/api/fraud/apps", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	apps, _ := body["data"].([]any)
	require.Len(t, apps, 1)
	assert.Equal(t, "QuickLoan", apps[0].(map[string]any)["app_name"])
	assert.Equal(t, float64(1), body["meta"].(map[string]any)["count"])

	w = doJSON(r, http.MethodGet, "/api/fraud/trends", nil)
	require.Equal(t, http.StatusOK, w.Code)
	trends, _ := decodeBody(t, w)["data"].([]any)
	require.Len(t, trends, 2)
	assert.Equal(t, float64(5), trends[1].(map[string]any)["fraud_cases_detected"])
}

func TestFraudHandler_Summary(t *testing.T) {
	r := newFraudEngine(fixedFeed{}, nil)

	w := doJSON(r, http.MethodGet, "/api/fraud/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(2), data["total_urls"])
	assert.Equal(t, float64(8), data["total_cases"])
	assert.Equal(t, float64(4), data["average_daily_cases"])
}

func TestFraudHandler_UpstreamFailure(t *testing.T) {
	r := newFraudEngine(fixedFeed{err: errors.New("connection reset")}, nil)

	for _, path := range []string{"/api/fraud/apps", "/api/fraud/urls", "/api/fraud/summary"} {
		w := doJSON(r, http.MethodGet, path, nil)
		require.Equal(t, http.StatusBadGateway, w.Code, path)
		assert.Equal(t, "Failed to fetch fraud data", decodeBody(t, w)["message"])
	}
	w := doJSON(r, http.MethodPost, "/api/fraud/refresh", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestFraudHandler_Search(t *testing.T) {
	r := newFraudEngine(fixedFeed{}, nil)

	w := doJSON(r, http.MethodGet, "/api/fraud/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/api/fraud/search?q=loan", nil)
	require.Equal(t, http.StatusOK, w.Code)
	meta := decodeBody(t, w)["meta"].(map[string]any)
	assert.Equal(t, float64(0), meta["count"])
	assert.Equal(t, "loan", meta["query"])
}

func TestFraudHandler_ExportReport(t *testing.T) {
	w := doJSON(newFraudEngine(fixedFeed{}, nil), http.MethodPost, "/api/fraud/reports", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	reports := &uploadedReports{}
	w = doJSON(newFraudEngine(fixedFeed{}, reports), http.MethodPost, "/api/fraud/reports", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	require.Len(t, reports.paths, 1)
	assert.Equal(t, "https://storage.example/"+reports.paths[0], data["url"])
	assert.NotEmpty(t, data["id"])
}
