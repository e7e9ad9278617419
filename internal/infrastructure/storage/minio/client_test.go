package minio

import (
	"context"
	"errors"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/ClauseLens/pkg/errors"
)

type MockObjectAPI struct {
	mock.Mock
}

func (m *MockObjectAPI) ListBuckets(ctx context.Context) ([]minio.BucketInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]minio.BucketInfo), args.Error(1)
}

func (m *MockObjectAPI) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *MockObjectAPI) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return m.Called(ctx, bucketName, opts).Error(0)
}

func (m *MockObjectAPI) SetBucketLifecycle(ctx context.Context, bucketName string, config *lifecycle.Configuration) error {
	return m.Called(ctx, bucketName, config).Error(0)
}

func (m *MockObjectAPI) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	args := m.Called(ctx, bucketName, opts)
	return args.Get(0).(<-chan minio.ObjectInfo)
}

func (m *MockObjectAPI) PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error) {
	args := m.Called(ctx, bucketName, objectName, expiry, reqParams)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*url.URL), args.Error(1)
}

func (m *MockObjectAPI) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *MockObjectAPI) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

func (m *MockObjectAPI) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return m.Called(ctx, bucketName, objectName, opts).Error(0)
}

func newTestClient(api ObjectAPI) *Client {
	return NewClientWithAPI(api, &Config{}, logging.NewNopLogger())
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, time.Hour, cfg.PresignExpiry)
	assert.Equal(t, 30, cfg.ReportRetentionDays)
	assert.Equal(t, "clauselens-contracts", cfg.Buckets.Contracts)
	assert.Equal(t, "clauselens-reports", cfg.Buckets.Reports)

	cfg = &Config{Buckets: BucketConfig{Reports: "custom"}}
	applyDefaults(cfg)
	assert.Equal(t, "custom", cfg.Buckets.Reports)
}

func TestEnsureBuckets_CreatesMissing(t *testing.T) {
	api := new(MockObjectAPI)
	api.On("BucketExists", mock.Anything, "clauselens-contracts").Return(true, nil)
	api.On("BucketExists", mock.Anything, "clauselens-reports").Return(false, nil)
	api.On("MakeBucket", mock.Anything, "clauselens-reports", minio.MakeBucketOptions{Region: "us-east-1"}).Return(nil)

	require.NoError(t, newTestClient(api).EnsureBuckets(context.Background()))
	api.AssertExpectations(t)
	api.AssertNotCalled(t, "MakeBucket", mock.Anything, "clauselens-contracts", mock.Anything)
}

func TestEnsureBuckets_Errors(t *testing.T) {
	api := new(MockObjectAPI)
	api.On("BucketExists", mock.Anything, mock.Anything).Return(false, errors.New("dial tcp"))
	err := newTestClient(api).EnsureBuckets(context.Background())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeStorageError))

	api = new(MockObjectAPI)
	api.On("BucketExists", mock.Anything, mock.Anything).Return(false, nil)
	api.On("MakeBucket", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("denied"))
	err = newTestClient(api).EnsureBuckets(context.Background())
	assert.Error(t, err)
}

func TestSetupLifecycleRules(t *testing.T) {
	api := new(MockObjectAPI)
	api.On("SetBucketLifecycle", mock.Anything, "clauselens-reports", mock.MatchedBy(func(c *lifecycle.Configuration) bool {
		return len(c.Rules) == 1 && c.Rules[0].Expiration.Days == 30 && c.Rules[0].Status == "Enabled"
	})).Return(errors.New("not implemented"))

	newTestClient(api).SetupLifecycleRules(context.Background())
	api.AssertExpectations(t)
}

func TestHealthCheck(t *testing.T) {
	api := new(MockObjectAPI)
	api.On("ListBuckets", mock.Anything).Return([]minio.BucketInfo{}, nil)
	api.On("BucketExists", mock.Anything, "clauselens-contracts").Return(true, nil)
	api.On("BucketExists", mock.Anything, "clauselens-reports").Return(false, nil)

	status, err := newTestClient(api).HealthCheck(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Healthy)
	assert.Equal(t, "bucket clauselens-reports missing", status.Error)
	assert.True(t, status.BucketStatuses["clauselens-contracts"])
}

func TestHealthCheck_Unreachable(t *testing.T) {
	api := new(MockObjectAPI)
	api.On("ListBuckets", mock.Anything).Return(nil, errors.New("connection refused"))

	status, err := newTestClient(api).HealthCheck(context.Background())
	assert.Error(t, err)
	assert.False(t, status.Healthy)
	assert.Equal(t, "connection refused", status.Error)
}
