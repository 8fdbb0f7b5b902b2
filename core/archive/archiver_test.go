package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"proxy-manager/core/reconcile"
	"proxy-manager/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEnsureBucketExisting(t *testing.T) {
	client := &mocks.Client{}
	client.On("BucketExists", mock.Anything, "snaps").Return(true, nil)

	a := New(client, "snaps", zap.NewNop())
	require.NoError(t, a.EnsureBucket(context.Background()))

	client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnsureBucketCreates(t *testing.T) {
	client := &mocks.Client{}
	client.On("BucketExists", mock.Anything, "snaps").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "snaps", mock.Anything).Return(nil)

	a := New(client, "snaps", zap.NewNop())
	require.NoError(t, a.EnsureBucket(context.Background()))

	client.AssertExpectations(t)
}

func TestEnsureBucketCheckFailure(t *testing.T) {
	client := &mocks.Client{}
	client.On("BucketExists", mock.Anything, "snaps").Return(false, errors.New("no route"))

	a := New(client, "snaps", zap.NewNop())
	assert.Error(t, a.EnsureBucket(context.Background()))
}

func TestSnapshotUploadsJSON(t *testing.T) {
	var uploaded []byte
	client := &mocks.Client{}
	client.On("PutObject", mock.Anything, "snaps",
		"snapshots/ipr/2026-08-01T12-00-00Z.json",
		mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			reader := args.Get(3).(io.Reader)
			data, err := io.ReadAll(reader)
			require.NoError(t, err)
			uploaded = data

			size := args.Get(4).(int64)
			assert.Equal(t, int64(len(data)), size)

			opts := args.Get(5).(minio.PutObjectOptions)
			assert.Equal(t, "application/json", opts.ContentType)
		}).
		Return(minio.UploadInfo{}, nil)

	a := New(client, "snaps", zap.NewNop())
	a.now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }

	inventory := []reconcile.NormalizedProxy{{ID: "dev-1", Name: "Office SIM", Active: true}}
	require.NoError(t, a.Snapshot(context.Background(), "ipr", inventory))

	var decoded []reconcile.NormalizedProxy
	require.NoError(t, json.Unmarshal(uploaded, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "dev-1", decoded[0].ID)

	client.AssertExpectations(t)
}

func TestSnapshotUploadFailure(t *testing.T) {
	client := &mocks.Client{}
	client.On("PutObject", mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("storage offline"))

	a := New(client, "snaps", zap.NewNop())
	err := a.Snapshot(context.Background(), "ltn", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage offline")
}
