package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/turtacn/ClauseLens/internal/application/analysis"
	"github.com/turtacn/ClauseLens/internal/application/dashboard"
	"github.com/turtacn/ClauseLens/internal/application/export"
	"github.com/turtacn/ClauseLens/internal/domain/clause"
	"github.com/turtacn/ClauseLens/internal/domain/viewer"
	"github.com/turtacn/ClauseLens/internal/interfaces/http/middleware"
	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockService struct {
	mock.Mock
}

var _ analysis.Service = (*mockService)(nil)

func (m *mockService) Workspace(id string) (*analysis.Workspace, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analysis.Workspace), args.Error(1)
}

func (m *mockService) Snapshot(id string) (analysis.Snapshot, error) {
	args := m.Called(id)
	return args.Get(0).(analysis.Snapshot), args.Error(1)
}

func (m *mockService) AnalyzeClause(ctx context.Context, ws, text string, mode contract.PredictionKind) (analysis.ClauseState, error) {
	args := m.Called(ctx, ws, text, mode)
	return args.Get(0).(analysis.ClauseState), args.Error(1)
}

func (m *mockService) ExplainWithLLM(ctx context.Context, ws string) (analysis.ClauseState, error) {
	args := m.Called(ctx, ws)
	return args.Get(0).(analysis.ClauseState), args.Error(1)
}

func (m *mockService) ClearClause(ws string) error {
	return m.Called(ws).Error(0)
}

func (m *mockService) AnalyzeDocument(ctx context.Context, ws, name string, data []byte) (analysis.DocumentState, error) {
	args := m.Called(ctx, ws, name, data)
	return args.Get(0).(analysis.DocumentState), args.Error(1)
}

func (m *mockService) ClearDocument(ws string) error {
	return m.Called(ws).Error(0)
}

func (m *mockService) overlays(args mock.Arguments) ([]viewer.Overlay, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]viewer.Overlay), args.Error(1)
}

func (m *mockService) HighlightAll(ws string) ([]viewer.Overlay, error) {
	return m.overlays(m.Called(ws))
}

func (m *mockService) Focus(ws string, idx int) ([]viewer.Overlay, error) {
	return m.overlays(m.Called(ws, idx))
}

func (m *mockService) Overlays(ws string) ([]viewer.Overlay, error) {
	return m.overlays(m.Called(ws))
}

func (m *mockService) Metrics(ws string) (*dashboard.Metrics, error) {
	args := m.Called(ws)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dashboard.Metrics), args.Error(1)
}

func (m *mockService) Clauses(ws string, q dashboard.Query) ([]dashboard.ClauseView, error) {
	args := m.Called(ws, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dashboard.ClauseView), args.Error(1)
}

func (m *mockService) Export(ws string, f export.Format) ([]byte, error) {
	args := m.Called(ws, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockService) GenerateReport(ctx context.Context, ws string) (*analysis.Report, error) {
	args := m.Called(ctx, ws)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analysis.Report), args.Error(1)
}

func (m *mockService) AuditLog(ctx context.Context, action string) ([]dashboard.AuditView, error) {
	args := m.Called(ctx, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dashboard.AuditView), args.Error(1)
}

func (m *mockService) SetSensitivity(ws, name string) (clause.Profile, error) {
	args := m.Called(ws, name)
	return args.Get(0).(clause.Profile), args.Error(1)
}

func (m *mockService) SetMode(ws, mode string) (contract.PredictionKind, error) {
	args := m.Called(ws, mode)
	return args.Get(0).(contract.PredictionKind), args.Error(1)
}

func (m *mockService) Ready(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type routeRegistrar interface {
	RegisterRoutes(r gin.IRouter)
}

func newTestRouter(h routeRegistrar) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Workspace())
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func do(r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}
