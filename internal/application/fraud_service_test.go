package application

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/fraudwatch/internal/domain/entity"
)

type stubFeed struct {
	apps   []entity.FraudApp
	urls   []entity.FraudURL
	trends []entity.FraudTrend
	err    error
	calls  int32
}

func (f *stubFeed) Apps(context.Context) ([]entity.FraudApp, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.apps, f.err
}

func (f *stubFeed) URLs(context.Context) ([]entity.FraudURL, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.urls, f.err
}

func (f *stubFeed) Trends(context.Context) ([]entity.FraudTrend, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.trends, f.err
}

type stubIndex struct {
	apps int
	urls int
	hits []SearchHit
	q    string
	size int
}

func (i *stubIndex) IndexApps(_ context.Context, apps []entity.FraudApp) error {
	i.apps += len(apps)
	return nil
}

func (i *stubIndex) IndexURLs(_ context.Context, urls []entity.FraudURL) error {
	i.urls += len(urls)
	return errors.New("es unavailable")
}

func (i *stubIndex) Search(_ context.Context, q string, size int) ([]SearchHit, error) {
	i.q, i.size = q, size
	return i.hits, nil
}

type memoryReports struct {
	path string
	body []byte
}

func (m *memoryReports) Put(_ context.Context, objectPath, _ string, body []byte) (string, error) {
	m.path, m.body = objectPath, body
	return "https://storage.googleapis.com/bucket/" + objectPath, nil
}

func sampleFeed() *stubFeed {
	return &stubFeed{
		apps: []entity.FraudApp{
			{AppName: "QuickLoan", Developer: "Shady", Category: "Finance", RiskLevel: "High", ReportedOn: "2025-03-01"},
		},
		urls: []entity.FraudURL{
			{URL: "http://a.test", RiskLevel: "High", Category: "Phishing"},
			{URL: "http://b.test", RiskLevel: "medium", Category: "malware"},
			{URL: "http://c.test", RiskLevel: "LOW", Category: "Investment Scam"},
			{URL: "http://d.test", RiskLevel: "Unknown", Category: "Unknown"},
		},
		trends: []entity.FraudTrend{
			{Date: "2025-03-01", FraudCasesDetected: 10},
			{Date: "2025-03-02", FraudCasesDetected: 25},
			{Date: "2025-03-03", FraudCasesDetected: 25},
			{Date: "2025-03-04", FraudCasesDetected: 4},
		},
	}
}

func newFraudService(t *testing.T, feed *stubFeed) (*FraudService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	logger, _ := test.NewNullLogger()
	return NewFraudService(feed, rdb, time.Minute, nil, nil, logger), mr
}

func TestSummarize(t *testing.T) {
	f := sampleFeed()
	sum := Summarize(f.apps, f.urls, f.trends)

	assert.Equal(t, 1, sum.TotalApps)
	assert.Equal(t, 4, sum.TotalURLs)
	assert.Equal(t, map[string]int{"high": 1, "medium": 1, "low": 1}, sum.URLsByRisk)
	assert.Equal(t, map[string]int{"phishing": 1, "malware": 1, "scams": 1}, sum.URLsByCategory)
	assert.Equal(t, 64, sum.TotalCases)
	assert.Equal(t, 16, sum.AverageDaily)
	assert.Equal(t, 25, sum.PeakDayCases)
	assert.Equal(t, "2025-03-02", sum.PeakDay, "first peak wins ties")
	assert.Equal(t, 4, sum.TrendDays)
}

func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(nil, nil, nil)

	assert.Zero(t, sum.TotalCases)
	assert.Zero(t, sum.AverageDaily)
	assert.Zero(t, sum.PeakDayCases)
	assert.Empty(t, sum.PeakDay)
	assert.Equal(t, 0, sum.URLsByRisk["high"])
}

func TestFraudService_CachesFeeds(t *testing.T) {
	feed := sampleFeed()
	svc, mr := newFraudService(t, feed)
	ctx := context.Background()

	first, err := svc.URLs(ctx)
	require.NoError(t, err)
	second, err := svc.URLs(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&feed.calls))

	raw, err := mr.Get(cacheKeyURLs)
	require.NoError(t, err)
	var cachedURLs []entity.FraudURL
	require.NoError(t, json.Unmarshal([]byte(raw), &cachedURLs))
	assert.Len(t, cachedURLs, 4)
	assert.Equal(t, time.Minute, mr.TTL(cacheKeyURLs))

	// refresh reloads all three feeds, later reads hit the new cache
	require.NoError(t, svc.Refresh(ctx))
	assert.Equal(t, int32(4), atomic.LoadInt32(&feed.calls))
	_, err = svc.URLs(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(4), atomic.LoadInt32(&feed.calls))
}

func TestFraudService_WithoutRedis(t *testing.T) {
	feed := sampleFeed()
	svc := NewFraudService(feed, nil, time.Minute, nil, nil, nil)

	apps, err := svc.Apps(context.Background())
	require.NoError(t, err)
	assert.Len(t, apps, 1)
	require.NoError(t, svc.Refresh(context.Background()))
}

func TestFraudService_Summary(t *testing.T) {
	svc, _ := newFraudService(t, sampleFeed())

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 64, sum.TotalCases)
	assert.Equal(t, 4, sum.TotalURLs)
}

func TestFraudService_UpstreamError(t *testing.T) {
	feed := sampleFeed()
	feed.err = errors.New("connection refused")
	svc, _ := newFraudService(t, feed)

	_, err := svc.Summary(context.Background())
	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, feed.err)
}

func TestFraudService_IndexesFreshRecords(t *testing.T) {
	idx := &stubIndex{}
	svc, _ := newFraudService(t, sampleFeed())
	svc.Index = idx
	ctx := context.Background()

	_, err := svc.Apps(ctx)
	require.NoError(t, err)
	_, err = svc.URLs(ctx)
	require.NoError(t, err, "index failures are logged only")
	_, err = svc.Apps(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, idx.apps, "cache hits are not re-indexed")
	assert.Equal(t, 4, idx.urls)
}

func TestFraudService_Search(t *testing.T) {
	svc, _ := newFraudService(t, sampleFeed())
	ctx := context.Background()

	hits, err := svc.Search(ctx, "loan", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)

	idx := &stubIndex{hits: []SearchHit{{Kind: "app", ID: "x"}}}
	svc.Index = idx

	hits, err = svc.Search(ctx, "loan", 500)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
	assert.Equal(t, "loan", idx.q)
	assert.Equal(t, 50, idx.size)

	_, err = svc.Search(ctx, "loan", 0)
	require.NoError(t, err)
	assert.Equal(t, 10, idx.size)

	hits, err = svc.Search(ctx, "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestFraudService_ExportReport(t *testing.T) {
	svc, _ := newFraudService(t, sampleFeed())
	ctx := context.Background()

	_, _, err := svc.ExportReport(ctx, "user-1")
	assert.ErrorIs(t, err, ErrExportUnavailable)

	store := &memoryReports{}
	svc.Reports = store
	report, url, err := svc.ExportReport(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, "reports/"+report.ID+".json", store.path)
	assert.Contains(t, url, store.path)
	assert.Equal(t, "user-1", report.GeneratedBy)

	var decoded Report
	require.NoError(t, json.Unmarshal(store.body, &decoded))
	assert.Equal(t, 64, decoded.Summary.TotalCases)
	assert.Len(t, decoded.URLs, 4)
}
