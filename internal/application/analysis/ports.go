// Package analysis orchestrates contract review for a workspace: clause and
// document analysis against the backend, the PDF viewer, reports, exports
// and the notifications raised along the way.
package analysis

import (
	"context"
	"time"

	"github.com/turtacn/ClauseLens/internal/infrastructure/storage/minio"
	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

// Backend is the analysis service. *client.Client satisfies it.
type Backend interface {
	AnalyzeClause(ctx context.Context, kind contract.PredictionKind, text string) (*contract.Prediction, error)
	AnalyzeDocument(ctx context.Context, filename string, data []byte) (*contract.DocumentResult, error)
	GenerateReport(ctx context.Context, results []contract.ClauseResult) ([]byte, error)
	AuditLog(ctx context.Context) (*contract.AuditLog, error)
	Ping(ctx context.Context) error
}

// ResultCache is the slice of the redis cache used for clause predictions.
type ResultCache interface {
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error
}

// Archive stores uploaded contracts and generated reports. *minio.Archive
// satisfies it.
type Archive interface {
	PutContract(ctx context.Context, workspace, name string, data []byte) (*minio.Object, error)
	PutReport(ctx context.Context, workspace string, data []byte) (*minio.Object, error)
}
