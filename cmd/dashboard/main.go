// Command dashboard serves the ClauseLens review API: clause and document
// analysis, the PDF viewer overlays, exports, reports and the audit log.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ClauseLens/internal/application/analysis"
	"github.com/turtacn/ClauseLens/internal/config"
	"github.com/turtacn/ClauseLens/internal/domain/viewer"
	"github.com/turtacn/ClauseLens/internal/infrastructure/database/redis"
	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ClauseLens/internal/infrastructure/storage/minio"
	httpserver "github.com/turtacn/ClauseLens/internal/interfaces/http"
	"github.com/turtacn/ClauseLens/internal/interfaces/http/handlers"
	"github.com/turtacn/ClauseLens/internal/interfaces/http/middleware"
	"github.com/turtacn/ClauseLens/pkg/client"
	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

// Build-time variables injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	backendURL := flag.String("backend", "", "analysis backend URL (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *backendURL != "" {
		cfg.Backend.BaseURL = *backendURL
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("dashboard exited with error", logging.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting ClauseLens dashboard",
		logging.String("version", version),
		logging.String("addr", cfg.Server.Addr()),
		logging.String("backend", cfg.Backend.BaseURL),
	)

	var (
		collector prometheus.MetricsCollector
		metrics   *prometheus.AppMetrics
		err       error
	)
	if cfg.Metrics.Enabled {
		collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            "clauselens",
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		metrics = prometheus.NewAppMetrics(collector)
	}

	clientOpts := []client.Option{
		client.WithTimeout(cfg.Backend.Timeout),
		client.WithRetryMax(cfg.Backend.RetryMax),
		client.WithHybridThreshold(cfg.Backend.HybridThreshold),
		client.WithLogger(logging.Printf{L: logger}),
		client.WithUserAgent("clauselens-dashboard/" + version),
	}
	if cfg.Backend.APIKey != "" {
		clientOpts = append(clientOpts, client.WithAPIKey(cfg.Backend.APIKey))
	}
	apiClient, err := client.NewClient(cfg.Backend.BaseURL, clientOpts...)
	if err != nil {
		return fmt.Errorf("backend client: %w", err)
	}
	var backend analysis.Backend = apiClient

	checkers := []handlers.HealthChecker{}

	if cfg.Cache.Enabled {
		rc, err := redis.NewClient(&redis.Config{
			Addr:         cfg.Cache.Addr,
			Password:     cfg.Cache.Password,
			DB:           cfg.Cache.DB,
			PoolSize:     cfg.Cache.PoolSize,
			DialTimeout:  cfg.Cache.DialTimeout,
			ReadTimeout:  cfg.Cache.ReadTimeout,
			WriteTimeout: cfg.Cache.WriteTimeout,
		}, logger)
		if err != nil {
			// Predictions still work uncached.
			logger.Warn("result cache unavailable, continuing without it", logging.Err(err))
		} else {
			defer func() { _ = rc.Close() }()
			cache := redis.NewRedisCache(rc, logger,
				redis.WithPrefix(cfg.Cache.KeyPrefix),
				redis.WithDefaultTTL(cfg.Cache.TTL))
			backend = analysis.NewCachedBackend(backend, cache, cfg.Cache.TTL, logger, metrics)
			checkers = append(checkers, &redisHealthAdapter{client: rc})
		}
	}

	var svcOpts []analysis.Option
	if cfg.Archive.Enabled {
		mc, err := minio.NewClient(ctx, &minio.Config{
			Endpoint:        cfg.Archive.Endpoint,
			AccessKeyID:     cfg.Archive.AccessKey,
			SecretAccessKey: cfg.Archive.SecretKey,
			UseSSL:          cfg.Archive.UseSSL,
			Region:          cfg.Archive.Region,
			Buckets: minio.BucketConfig{
				Contracts: cfg.Archive.ContractsBucket,
				Reports:   cfg.Archive.ReportsBucket,
			},
			PresignExpiry:       cfg.Archive.PresignExpiry,
			ReportRetentionDays: cfg.Archive.ReportRetentionDays,
		}, logger)
		if err != nil {
			logger.Warn("archive unavailable, uploads and reports will not be stored", logging.Err(err))
		} else {
			svcOpts = append(svcOpts, analysis.WithArchive(minio.NewArchive(mc, logger)))
			checkers = append(checkers, &minioHealthAdapter{client: mc})
		}
	}

	mode, _ := contract.ParsePredictionKind(cfg.Dashboard.DefaultMode)
	store := analysis.NewStore(analysis.StoreConfig{
		TTL:             cfg.Workspace.TTL,
		CleanupInterval: cfg.Workspace.CleanupInterval,
		DefaultMode:     mode,
		Sensitivity:     cfg.Dashboard.Sensitivity,
		Viewer: viewer.Config{
			Scale:          cfg.Dashboard.Scale,
			ContainerWidth: cfg.Dashboard.ContainerWidth,
			FadeAfter:      cfg.Dashboard.FadeAfter,
			RemoveAfter:    cfg.Dashboard.RemoveAfter,
		},
		ViewerOptions: []viewer.Option{viewer.WithLogger(logger)},
	}, logger, metrics)

	notifier := analysis.NewMemoryNotifier(cfg.Workspace.NotificationLimit)
	svcOpts = append(svcOpts,
		analysis.WithMetrics(metrics),
		analysis.WithMaxUploadBytes(cfg.Server.MaxUploadBytes))
	svc := analysis.NewService(backend, store, notifier, logger, svcOpts...)

	checkers = append([]handlers.HealthChecker{
		handlers.CheckFunc{Component: "backend", Fn: svc.Ready},
	}, checkers...)

	var cors *middleware.CORSConfig
	if len(cfg.Server.CORSOrigins) > 0 {
		c := middleware.DefaultCORSConfig()
		c.AllowedOrigins = cfg.Server.CORSOrigins
		c.AllowWildcard = true
		cors = &c
	}

	gin.SetMode(cfg.Server.Mode)
	router := httpserver.NewRouter(httpserver.RouterConfig{
		ClauseHandler:    handlers.NewClauseHandler(svc, logger),
		DocumentHandler:  handlers.NewDocumentHandler(svc, logger, cfg.Server.MaxUploadBytes),
		DashboardHandler: handlers.NewDashboardHandler(svc, notifier, logger),
		ViewerHandler:    handlers.NewViewerHandler(svc, logger),
		ReportHandler:    handlers.NewReportHandler(svc, logger),
		HealthHandler:    handlers.NewHealthHandler(version, checkers...),
		CORS:             cors,
		Logging:          middleware.DefaultLoggingConfig(),
		Logger:           logger,
		MetricsCollector: collector,
		Metrics:          metrics,
		MetricsPath:      cfg.Metrics.Path,
	})

	srv := httpserver.NewServer(cfg.Server, router, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down dashboard...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	logger.Info("dashboard stopped")
	return nil
}
