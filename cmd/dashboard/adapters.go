package main

import (
	"context"

	"github.com/turtacn/ClauseLens/internal/infrastructure/database/redis"
	"github.com/turtacn/ClauseLens/internal/infrastructure/storage/minio"
	"github.com/turtacn/ClauseLens/pkg/errors"
)

// Adapters for HealthHandler
type redisHealthAdapter struct {
	client *redis.Client
}

func (a *redisHealthAdapter) Name() string {
	return "redis"
}

func (a *redisHealthAdapter) Check(ctx context.Context) error {
	return a.client.Ping(ctx)
}

type minioHealthAdapter struct {
	client *minio.Client
}

func (a *minioHealthAdapter) Name() string {
	return "archive"
}

func (a *minioHealthAdapter) Check(ctx context.Context) error {
	status, err := a.client.HealthCheck(ctx)
	if err != nil {
		return err
	}
	if !status.Healthy {
		return errors.New(errors.ErrCodeServiceUnavailable, "archive buckets are not reachable")
	}
	return nil
}
