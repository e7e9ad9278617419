package analysis

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/ClauseLens/internal/domain/viewer"
	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseLens/internal/infrastructure/storage/minio"
	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

var testNow = time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)

// pdfBytes passes content sniffing as a PDF.
var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) AnalyzeClause(ctx context.Context, kind contract.PredictionKind, text string) (*contract.Prediction, error) {
	args := m.Called(ctx, kind, text)
	p, _ := args.Get(0).(*contract.Prediction)
	return p, args.Error(1)
}

func (m *MockBackend) AnalyzeDocument(ctx context.Context, filename string, data []byte) (*contract.DocumentResult, error) {
	args := m.Called(ctx, filename, data)
	d, _ := args.Get(0).(*contract.DocumentResult)
	return d, args.Error(1)
}

func (m *MockBackend) GenerateReport(ctx context.Context, results []contract.ClauseResult) ([]byte, error) {
	args := m.Called(ctx, results)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *MockBackend) AuditLog(ctx context.Context) (*contract.AuditLog, error) {
	args := m.Called(ctx)
	l, _ := args.Get(0).(*contract.AuditLog)
	return l, args.Error(1)
}

func (m *MockBackend) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type fakeArchive struct {
	mu        sync.Mutex
	contracts []string
	reports   int
	err       error
}

func (a *fakeArchive) PutContract(_ context.Context, ws, name string, _ []byte) (*minio.Object, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	a.contracts = append(a.contracts, name)
	return &minio.Object{Kind: minio.KindContract, Key: ws + "/2024/03/09/id-" + name, Name: name}, nil
}

func (a *fakeArchive) PutReport(_ context.Context, ws string, _ []byte) (*minio.Object, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	a.reports++
	return &minio.Object{Kind: minio.KindReport, Key: ws + "/2024/03/09/id-" + minio.ReportFilename}, nil
}

type pagesDocument struct{ n int }

func (d pagesDocument) NumPages() int { return d.n }

func (d pagesDocument) Page(i int) (viewer.PageGeometry, error) {
	return viewer.PageGeometry{Index: i, Width: 612, Height: 792}, nil
}

// pagesParser ignores its input and reports n letter-sized pages.
type pagesParser struct {
	n   int
	err error
}

func (p pagesParser) Parse(io.ReaderAt, int64) (viewer.Document, error) {
	if p.err != nil {
		return nil, p.err
	}
	return pagesDocument{n: p.n}, nil
}

func newTestStore(t *testing.T, parser viewer.Parser) *Store {
	t.Helper()
	s := NewStore(StoreConfig{
		TTL:           time.Hour,
		Viewer:        viewer.Config{Scale: 1, ContainerWidth: 612},
		ViewerOptions: []viewer.Option{viewer.WithParser(parser)},
	}, logging.NewNopLogger(), nil)
	s.now = func() time.Time { return testNow }
	return s
}

func intPtr(i int) *int { return &i }

func sampleDocument() *contract.DocumentResult {
	return &contract.DocumentResult{
		TotalClauses: 2,
		Results: []contract.ClauseResult{
			{
				ClauseIndex: 0,
				Text:        "Either party may terminate this agreement immediately without notice.",
				Risk:        &contract.RiskDetail{RiskLevel: contract.TextLevel("HIGH"), Explanation: "Severe: no notice period"},
				Blocks:      []contract.Block{{Page: 0, BBox: []float64{10, 20, 110, 70}}},
			},
			{
				ClauseIndex: 1,
				Text:        "Payment is due within 30 days of invoice.",
				RiskLevel:   contract.TextLevel("LOW"),
				Page:        intPtr(1),
				BBox:        []float64{50, 60, 150, 90},
			},
		},
	}
}
