package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseLens/pkg/errors"
)

// ObjectAPI is the subset of *minio.Client the archive uses.
type ObjectAPI interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	SetBucketLifecycle(ctx context.Context, bucketName string, config *lifecycle.Configuration) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

type BucketConfig struct {
	Contracts string `mapstructure:"contracts" yaml:"contracts"`
	Reports   string `mapstructure:"reports" yaml:"reports"`
}

// Config configures the contract and report archive.
type Config struct {
	Endpoint            string        `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKeyID         string        `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey     string        `mapstructure:"secret_access_key" yaml:"secret_access_key"`
	UseSSL              bool          `mapstructure:"use_ssl" yaml:"use_ssl"`
	Region              string        `mapstructure:"region" yaml:"region"`
	Buckets             BucketConfig  `mapstructure:"buckets" yaml:"buckets"`
	PresignExpiry       time.Duration `mapstructure:"presign_expiry" yaml:"presign_expiry"`
	ReportRetentionDays int           `mapstructure:"report_retention_days" yaml:"report_retention_days"`
}

// Client holds a connected object store and the resolved bucket names.
type Client struct {
	api    ObjectAPI
	config *Config
	logger logging.Logger
}

// NewClient connects to the object store, creates missing buckets and
// installs the report retention rule.
func NewClient(ctx context.Context, cfg *Config, log logging.Logger) (*Client, error) {
	applyDefaults(cfg)

	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to create minio client")
	}

	c := NewClientWithAPI(api, cfg, log)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := api.ListBuckets(ctx); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to connect to minio")
	}
	if err := c.EnsureBuckets(ctx); err != nil {
		return nil, err
	}
	c.SetupLifecycleRules(ctx)

	c.logger.Info("MinIO archive connected", logging.String("endpoint", cfg.Endpoint), logging.Bool("ssl", cfg.UseSSL))
	return c, nil
}

// NewClientWithAPI wraps an existing API implementation without touching the
// network.
func NewClientWithAPI(api ObjectAPI, cfg *Config, log logging.Logger) *Client {
	applyDefaults(cfg)
	return &Client{api: api, config: cfg, logger: logging.OrNop(log)}
}

func applyDefaults(cfg *Config) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.PresignExpiry == 0 {
		cfg.PresignExpiry = time.Hour
	}
	if cfg.ReportRetentionDays == 0 {
		cfg.ReportRetentionDays = 30
	}
	if cfg.Buckets.Contracts == "" {
		cfg.Buckets.Contracts = "clauselens-contracts"
	}
	if cfg.Buckets.Reports == "" {
		cfg.Buckets.Reports = "clauselens-reports"
	}
}

func (c *Client) buckets() []string {
	return []string{c.config.Buckets.Contracts, c.config.Buckets.Reports}
}

func (c *Client) EnsureBuckets(ctx context.Context) error {
	for _, bucket := range c.buckets() {
		exists, err := c.api.BucketExists(ctx, bucket)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeStorageError, "failed to check bucket existence")
		}
		if exists {
			continue
		}
		if err := c.api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: c.config.Region}); err != nil {
			return errors.Wrap(err, errors.ErrCodeStorageError, fmt.Sprintf("failed to create bucket %s", bucket))
		}
		c.logger.Info("Created bucket", logging.String("bucket", bucket))
	}
	return nil
}

// SetupLifecycleRules expires generated reports. Contracts are kept. A
// failure is logged only; some S3 implementations lack lifecycle support.
func (c *Client) SetupLifecycleRules(ctx context.Context) {
	cfg := lifecycle.NewConfiguration()
	cfg.Rules = []lifecycle.Rule{{
		ID:     "reports-expiry",
		Status: "Enabled",
		Expiration: lifecycle.Expiration{
			Days: lifecycle.ExpirationDays(c.config.ReportRetentionDays),
		},
	}}
	if err := c.api.SetBucketLifecycle(ctx, c.config.Buckets.Reports, cfg); err != nil {
		c.logger.Warn("Failed to set lifecycle for reports bucket", logging.Err(err))
	}
}

type HealthStatus struct {
	Healthy        bool            `json:"healthy"`
	Latency        time.Duration   `json:"latency"`
	BucketStatuses map[string]bool `json:"buckets"`
	Error          string          `json:"error,omitempty"`
}

func (c *Client) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	start := time.Now()
	_, err := c.api.ListBuckets(ctx)
	status := &HealthStatus{
		Healthy:        err == nil,
		Latency:        time.Since(start),
		BucketStatuses: make(map[string]bool),
	}
	if err != nil {
		status.Error = err.Error()
		return status, err
	}
	for _, b := range c.buckets() {
		exists, _ := c.api.BucketExists(ctx, b)
		status.BucketStatuses[b] = exists
		if !exists {
			status.Healthy = false
			status.Error = fmt.Sprintf("bucket %s missing", b)
		}
	}
	return status, nil
}
