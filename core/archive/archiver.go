package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"proxy-manager/core/reconcile"
	"proxy-manager/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Archiver writes one raw inventory snapshot per successful fetch to object
// storage, keyed by provider and fetch time. Snapshots are an audit artifact:
// they let an operator replay what a provider reported at any point in time.
type Archiver struct {
	client storage.Client
	bucket string
	log    *zap.Logger
	now    func() time.Time
}

// New creates an Archiver writing to the given bucket.
func New(client storage.Client, bucket string, log *zap.Logger) *Archiver {
	return &Archiver{client: client, bucket: bucket, log: log, now: time.Now}
}

// EnsureBucket creates the snapshot bucket if it does not exist yet.
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", a.bucket, err)
	}
	a.log.Info("created snapshot bucket", zap.String("bucket", a.bucket))
	return nil
}

// Snapshot marshals the normalized inventory and uploads it as
// snapshots/<provider>/<timestamp>.json.
func (a *Archiver) Snapshot(ctx context.Context, provider string, inventory []reconcile.NormalizedProxy) error {
	payload, err := json.Marshal(inventory)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	objectName := fmt.Sprintf("snapshots/%s/%s.json",
		provider, a.now().UTC().Format("2006-01-02T15-04-05Z"))

	_, err = a.client.PutObject(ctx, a.bucket, objectName,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("upload snapshot %s: %w", objectName, err)
	}

	a.log.Debug("archived inventory snapshot",
		zap.String("object", objectName),
		zap.Int("bytes", len(payload)))
	return nil
}
