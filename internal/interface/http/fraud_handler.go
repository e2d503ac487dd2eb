package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/fraudwatch/internal/application"
	"github.com/oksasatya/fraudwatch/internal/domain/entity"
	"github.com/oksasatya/fraudwatch/internal/interface/middleware"
	"github.com/oksasatya/fraudwatch/pkg/helpers"
	"github.com/oksasatya/fraudwatch/pkg/response"
)

// FraudUseCase is the slice of application.FraudService the dashboard handlers need.
type FraudUseCase interface {
	Apps(ctx context.Context) ([]entity.FraudApp, error)
	URLs(ctx context.Context) ([]entity.FraudURL, error)
	Trends(ctx context.Context) ([]entity.FraudTrend, error)
	Summary(ctx context.Context) (entity.FraudSummary, error)
	Refresh(ctx context.Context) error
	Search(ctx context.Context, q string, size int) ([]application.SearchHit, error)
	ExportReport(ctx context.Context, requestedBy string) (*application.Report, string, error)
}

type FraudHandler struct {
	Svc    FraudUseCase
	Logger logrus.FieldLogger
}

func NewFraudHandler(svc FraudUseCase, logger logrus.FieldLogger) *FraudHandler {
	return &FraudHandler{Svc: svc, Logger: logger}
}

const msgFraudFetchFailed = "Failed to fetch fraud data"

// fail maps service errors to statuses; upstream problems are a bad gateway.
func (h *FraudHandler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, application.ErrUpstream):
		helpers.LogError(h.Logger, op+" failed", err, logrus.Fields{"request_id": c.GetString("request_id")})
		response.Error[any](c, http.StatusBadGateway, msgFraudFetchFailed, nil)
	case errors.Is(err, application.ErrExportUnavailable):
		response.Error[any](c, http.StatusServiceUnavailable, "Report export is not configured", nil)
	default:
		helpers.LogError(h.Logger, op+" failed", err, logrus.Fields{"request_id": c.GetString("request_id")})
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}

// Apps GET /api/fraud/apps
func (h *FraudHandler) Apps(c *gin.Context) {
	apps, err := h.Svc.Apps(c.Request.Context())
	if err != nil {
		h.fail(c, "fraud apps", err)
		return
	}
	response.Success(c, http.StatusOK, apps, "fraud apps", map[string]any{"count": len(apps)})
}

// URLs GET /api/fraud/urls
func (h *FraudHandler) URLs(c *gin.Context) {
	urls, err := h.Svc.URLs(c.Request.Context())
	if err != nil {
		h.fail(c, "fraud urls", err)
		return
	}
	response.Success(c, http.StatusOK, urls, "fraud urls", map[string]any{"count": len(urls)})
}

// Trends GET /api/fraud/trends
func (h *FraudHandler) Trends(c *gin.Context) {
	trends, err := h.Svc.Trends(c.Request.Context())
	if err != nil {
		h.fail(c, "fraud trends", err)
		return
	}
	response.Success(c, http.StatusOK, trends, "fraud trends", map[string]any{"count": len(trends)})
}

// Summary GET /api/fraud/summary
func (h *FraudHandler) Summary(c *gin.Context) {
	sum, err := h.Svc.Summary(c.Request.Context())
	if err != nil {
		h.fail(c, "fraud summary", err)
		return
	}
	response.Success(c, http.StatusOK, sum, "fraud summary", nil)
}

// Refresh POST /api/fraud/refresh drops cached feeds and reloads them.
func (h *FraudHandler) Refresh(c *gin.Context) {
	if err := h.Svc.Refresh(c.Request.Context()); err != nil {
		h.fail(c, "fraud refresh", err)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"refreshed": true}, "fraud data refreshed", nil)
}

// Search GET /api/fraud/search?q=...&size=...
func (h *FraudHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "query parameter q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		h.fail(c, "fraud search", err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits), "query": q})
}

// ExportReport POST /api/fraud/reports uploads a dashboard snapshot.
func (h *FraudHandler) ExportReport(c *gin.Context) {
	by := c.GetString(middleware.CtxUserEmailKey)
	report, url, err := h.Svc.ExportReport(c.Request.Context(), by)
	if err != nil {
		h.fail(c, "fraud report export", err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"id":           report.ID,
		"url":          url,
		"generated_at": report.GeneratedAt,
		"summary":      report.Summary,
	}, "report exported", nil)
}
