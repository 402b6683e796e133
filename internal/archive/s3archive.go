package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/models"
	"github.com/google/uuid"
)

// ObjectPutter is the part of the S3 client used here
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Snapshot is one archived version of a product mapping
type Snapshot struct {
	SnapshotID string                  `json:"snapshot_id"`
	ProductID  int                     `json:"product_id"`
	Mapping    models.WarehouseMapping `json:"mapping"`
	SavedBy    string                  `json:"saved_by,omitempty"`
	SavedAt    time.Time               `json:"saved_at"`
}

// S3Archive writes mapping snapshots as JSON objects
type S3Archive struct {
	Client ObjectPutter
	Bucket string
	Prefix string
}

// NewS3Archive returns an archive; an empty bucket disables it
func NewS3Archive(cfg aws.Config, bucket, prefix string) *S3Archive {
	if bucket == "" {
		return &S3Archive{}
	}
	return &S3Archive{Client: s3.NewFromConfig(cfg), Bucket: bucket, Prefix: prefix}
}

// Enabled reports whether snapshots have a bucket to go to
func (a *S3Archive) Enabled() bool { return a != nil && a.Client != nil && a.Bucket != "" }

// SnapshotKey builds prefix/product-<id>/<timestamp>-<snapshot>.json
func (a *S3Archive) SnapshotKey(s Snapshot) string {
	return fmt.Sprintf("%sproduct-%d/%s-%s.json", a.Prefix, s.ProductID, s.SavedAt.UTC().Format("20060102T150405Z"), s.SnapshotID)
}

// Put uploads the snapshot and returns its s3:// location
func (a *S3Archive) Put(ctx context.Context, s Snapshot) (string, error) {
	if !a.Enabled() {
		return "", fmt.Errorf("s3 archive not configured")
	}
	if s.SnapshotID == "" {
		s.SnapshotID = uuid.NewString()
	}
	if s.SavedAt.IsZero() {
		s.SavedAt = time.Now()
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	key := a.SnapshotKey(s)
	_, err = a.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(b),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("s3://%s/%s", a.Bucket, key), nil
}
