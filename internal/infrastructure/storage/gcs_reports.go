package storage

import (
	"bytes"
	"context"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/fraudwatch/internal/application"
	"github.com/oksasatya/fraudwatch/pkg/helpers"
)

// GCSReports stores exported reports in a Cloud Storage bucket.
type GCSReports struct {
	Client *storage.Client
	Bucket string
}

func NewGCSReports(client *storage.Client, bucket string) *GCSReports {
	return &GCSReports{Client: client, Bucket: bucket}
}

func (g *GCSReports) Put(ctx context.Context, objectPath, contentType string, body []byte) (string, error) {
	return helpers.UploadObject(ctx, g.Client, g.Bucket, objectPath, contentType, bytes.NewReader(body))
}

var _ application.ReportStore = (*GCSReports)(nil)
