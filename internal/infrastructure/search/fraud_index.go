package search

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/fraudwatch/internal/application"
	"github.com/oksasatya/fraudwatch/internal/domain/entity"
)

const (
	KindApp = "app"
	KindURL = "url"
)

// FraudIndex keeps fraud records searchable in Elasticsearch.
type FraudIndex struct {
	ES     *elasticsearch.Client
	Index  string
	Logger logrus.FieldLogger
}

func NewFraudIndex(es *elasticsearch.Client, index string, logger logrus.FieldLogger) *FraudIndex {
	return &FraudIndex{ES: es, Index: index, Logger: logger}
}

// DocumentID is stable per record so re-indexing overwrites instead of duplicating.
func DocumentID(kind, key string) string {
	sum := sha1.Sum([]byte(kind + ":" + key))
	return kind + "-" + hex.EncodeToString(sum[:8])
}

func (i *FraudIndex) IndexApps(ctx context.Context, apps []entity.FraudApp) error {
	docs := make([]bulkDoc, 0, len(apps))
	for _, a := range apps {
		docs = append(docs, bulkDoc{
			ID: DocumentID(KindApp, a.AppName+"|"+a.Developer),
			Body: map[string]any{
				"kind":        KindApp,
				"name":        a.AppName,
				"developer":   a.Developer,
				"category":    a.Category,
				"risk_level":  a.RiskLevel,
				"reported_on": a.ReportedOn,
			},
		})
	}
	return i.bulk(ctx, docs)
}

func (i *FraudIndex) IndexURLs(ctx context.Context, urls []entity.FraudURL) error {
	docs := make([]bulkDoc, 0, len(urls))
	for _, u := range urls {
		docs = append(docs, bulkDoc{
			ID: DocumentID(KindURL, u.URL),
			Body: map[string]any{
				"kind":        KindURL,
				"url":         u.URL,
				"category":    u.Category,
				"risk_level":  u.RiskLevel,
				"detected_on": u.DetectedOn,
			},
		})
	}
	return i.bulk(ctx, docs)
}

type bulkDoc struct {
	ID   string
	Body map[string]any
}

// BulkBody renders docs as an NDJSON bulk index request.
func BulkBody(index string, docs []bulkDoc) ([]byte, error) {
	var buf bytes.Buffer
	for _, d := range docs {
		meta := map[string]any{"index": map[string]any{"_index": index, "_id": d.ID}}
		m, err := json.Marshal(meta)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(d.Body)
		if err != nil {
			return nil, err
		}
		buf.Write(m)
		buf.WriteByte('\n')
		buf.Write(b)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func (i *FraudIndex) bulk(ctx context.Context, docs []bulkDoc) error {
	if i.ES == nil || i.Index == "" || len(docs) == 0 {
		return nil
	}
	body, err := BulkBody(i.Index, docs)
	if err != nil {
		return err
	}
	req := esapi.BulkRequest{Body: bytes.NewReader(body), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	res, err := req.Do(c, i.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es bulk index: %s", res.Status())
	}
	if err := checkBulkItems(res.Body); err != nil {
		return err
	}
	if i.Logger != nil {
		i.Logger.WithField("count", len(docs)).WithField("index", i.Index).Debug("fraud records indexed")
	}
	return nil
}

// checkBulkItems reports item level failures, which the bulk API returns with HTTP 200.
func checkBulkItems(r io.Reader) error {
	var parsed struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
			Error  *struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return fmt.Errorf("decode es bulk response: %w", err)
	}
	if !parsed.Errors {
		return nil
	}
	failed, first := 0, ""
	for _, item := range parsed.Items {
		for _, op := range item {
			if op.Error == nil {
				continue
			}
			failed++
			if first == "" {
				first = op.ID + ": " + op.Error.Type + ": " + op.Error.Reason
			}
		}
	}
	return fmt.Errorf("es bulk index: %d of %d items failed (%s)", failed, len(parsed.Items), first)
}

// SearchQuery builds a multi_match query across the indexed text fields.
func SearchQuery(q string, size int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"name^2", "url^2", "developer", "category", "risk_level"},
			},
		},
		"size": size,
	}
}

// Search performs a multi_match search over apps and urls.
func (i *FraudIndex) Search(ctx context.Context, q string, size int) ([]application.SearchHit, error) {
	if i.ES == nil || i.Index == "" {
		return []application.SearchHit{}, nil
	}
	b, err := json.Marshal(SearchQuery(q, size))
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := i.ES.Search(
		i.ES.Search.WithContext(c),
		i.ES.Search.WithIndex(i.Index),
		i.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}
	return DecodeHits(res.Body)
}

// DecodeHits extracts hits from an Elasticsearch search response body.
func DecodeHits(r io.Reader) ([]application.SearchHit, error) {
	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]application.SearchHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		kind, _ := h.Source["kind"].(string)
		out = append(out, application.SearchHit{Kind: kind, ID: h.ID, Source: h.Source})
	}
	return out, nil
}

var _ application.RecordIndex = (*FraudIndex)(nil)
