package fraudapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/fraudwatch/internal/domain/entity"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL+"/", time.Second, nil)
	c.RetryBase = time.Millisecond
	return c
}

func TestClient_Apps_DefaultsMissingFields(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fraud-apps", r.URL.Path)
		_, _ = w.Write([]byte(`[{"fraudulent_apps":[
			{"app_name":"QuickLoan","developer":"Shady Inc","category":"Finance","risk_level":"High","reported_on":"2025-03-01"},
			{"category":"Games"}
		]}]`))
	}))

	apps, err := c.Apps(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 2)

	assert.Equal(t, "QuickLoan", apps[0].AppName)
	assert.Equal(t, entity.FraudApp{
		AppName:    "Unknown App",
		Developer:  "Unknown Developer",
		Category:   "Games",
		RiskLevel:  "Unknown",
		ReportedOn: "Unknown",
	}, apps[1])
}

func TestClient_URLs_DefaultsMissingFields(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fraud-url", r.URL.Path)
		_, _ = w.Write([]byte(`[{"fraudulent_urls":[{"risk_level":"low"}]}]`))
	}))

	urls, err := c.URLs(context.Background())
	require.NoError(t, err)
	require.Len(t, urls, 1)
	assert.Equal(t, "Unknown URL", urls[0].URL)
	assert.Equal(t, "low", urls[0].RiskLevel)
	assert.Equal(t, "Unknown", urls[0].Category)
}

func TestClient_Trends(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"fraud_trends_30_days":[{"date":"2025-03-01","fraud_cases_detected":12},{"date":"2025-03-02","fraud_cases_detected":7}]}]`))
	}))

	trends, err := c.Trends(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []entity.FraudTrend{
		{Date: "2025-03-01", FraudCasesDetected: 12},
		{Date: "2025-03-02", FraudCasesDetected: 7},
	}, trends)
}

func TestClient_UnexpectedShapesYieldEmpty(t *testing.T) {
	bodies := map[string]string{
		"not an array":  `{"fraudulent_apps":[{"app_name":"x"}]}`,
		"empty array":   `[]`,
		"missing key":   `[{"something_else":[]}]`,
		"wrong element": `["text"]`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))

			apps, err := c.Apps(context.Background())
			require.NoError(t, err)
			assert.NotNil(t, apps)
			assert.Empty(t, apps)

			trends, err := c.Trends(context.Background())
			require.NoError(t, err)
			assert.NotNil(t, trends)
			assert.Empty(t, trends)
		})
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[{"fraudulent_urls":[{"url":"http://evil.test"}]}]`))
	}))

	urls, err := c.URLs(context.Background())
	require.NoError(t, err)
	require.Len(t, urls, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := c.Trends(context.Background())
	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusServiceUnavailable, serr.Code)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := c.Apps(context.Background())
	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "/fraud-apps", serr.Path)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
