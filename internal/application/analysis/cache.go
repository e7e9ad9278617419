package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ClauseLens/pkg/errors"
	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

const cacheName = "prediction"

// PredictionKey is the cache key of a clause prediction.
func PredictionKey(kind contract.PredictionKind, text string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return "predict:" + string(kind) + ":" + hex.EncodeToString(sum[:])
}

// uncached carries a prediction the backend answered with an error body, so
// it reaches the caller without being stored.
type uncached struct {
	p *contract.Prediction
}

func (u *uncached) Error() string { return u.p.Error }

type cachedBackend struct {
	Backend
	cache   ResultCache
	ttl     time.Duration
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

// NewCachedBackend caches clause predictions of next. Document analysis,
// reports and the audit log always reach the backend.
func NewCachedBackend(next Backend, cache ResultCache, ttl time.Duration, logger logging.Logger, metrics *prometheus.AppMetrics) Backend {
	return &cachedBackend{Backend: next, cache: cache, ttl: ttl, logger: logging.OrNop(logger), metrics: metrics}
}

func (b *cachedBackend) AnalyzeClause(ctx context.Context, kind contract.PredictionKind, text string) (*contract.Prediction, error) {
	key := PredictionKey(kind, text)
	loaded := false
	var p contract.Prediction
	err := b.cache.GetOrSet(ctx, key, &p, b.ttl, func(ctx context.Context) (interface{}, error) {
		loaded = true
		got, err := b.Backend.AnalyzeClause(ctx, kind, text)
		if err != nil {
			return nil, err
		}
		if got.Error != "" {
			return nil, &uncached{p: got}
		}
		return got, nil
	})
	prometheus.RecordCacheAccess(b.metrics, cacheName, err == nil && !loaded)

	var soft *uncached
	if errors.As(err, &soft) {
		return soft.p, nil
	}
	if err != nil {
		return nil, err
	}
	if p.Kind == "" {
		p.Kind = kind
	}
	return &p, nil
}
