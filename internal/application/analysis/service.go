package analysis

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/turtacn/ClauseLens/internal/application/dashboard"
	"github.com/turtacn/ClauseLens/internal/application/export"
	"github.com/turtacn/ClauseLens/internal/domain/clause"
	"github.com/turtacn/ClauseLens/internal/domain/viewer"
	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ClauseLens/internal/infrastructure/storage/minio"
	"github.com/turtacn/ClauseLens/pkg/client"
	"github.com/turtacn/ClauseLens/pkg/errors"
	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

// Messages shown to the user.
const (
	MsgClauseEmpty      = "Clause is empty — paste something useful."
	MsgClauseFailed     = "Failed to analyze clause"
	MsgExplainFailed    = "Failed to fetch LLM explanation"
	MsgDocumentFailed   = "Failed to analyze document"
	MsgNoDocument       = "Analyze a document first"
	MsgReportFailed     = "Failed to download report"
	MsgEmptyReport      = "Empty PDF received from backend"
	MsgNoPDF            = "No PDF selected."
	MsgDocumentAnalyzed = "Document analyzed successfully!"
	MsgReportReady      = "Report generated successfully!"
)

const componentName = "analysis"

// Report is a generated PDF report.
type Report struct {
	Filename string
	Data     []byte
	Ref      ReportRef
}

// Service drives a workspace through clause and document review.
type Service interface {
	Workspace(id string) (*Workspace, error)
	Snapshot(id string) (Snapshot, error)

	AnalyzeClause(ctx context.Context, workspace, text string, mode contract.PredictionKind) (ClauseState, error)
	ExplainWithLLM(ctx context.Context, workspace string) (ClauseState, error)
	ClearClause(workspace string) error

	AnalyzeDocument(ctx context.Context, workspace, name string, data []byte) (DocumentState, error)
	ClearDocument(workspace string) error

	HighlightAll(workspace string) ([]viewer.Overlay, error)
	Focus(workspace string, clauseIndex int) ([]viewer.Overlay, error)
	Overlays(workspace string) ([]viewer.Overlay, error)

	Metrics(workspace string) (*dashboard.Metrics, error)
	Clauses(workspace string, q dashboard.Query) ([]dashboard.ClauseView, error)
	Export(workspace string, format export.Format) ([]byte, error)
	GenerateReport(ctx context.Context, workspace string) (*Report, error)
	AuditLog(ctx context.Context, action string) ([]dashboard.AuditView, error)

	SetSensitivity(workspace, name string) (clause.Profile, error)
	SetMode(workspace, mode string) (contract.PredictionKind, error)
	Ready(ctx context.Context) error
}

// Option configures the service.
type Option func(*serviceImpl)

// WithArchive stores uploads and reports.
func WithArchive(a Archive) Option {
	return func(s *serviceImpl) { s.archive = a }
}

func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(s *serviceImpl) { s.metrics = m }
}

// WithMaxUploadBytes rejects larger documents. Zero means no limit.
func WithMaxUploadBytes(n int64) Option {
	return func(s *serviceImpl) { s.maxUpload = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *serviceImpl) { s.now = now }
}

type serviceImpl struct {
	backend   Backend
	store     *Store
	notifier  Notifier
	archive   Archive
	logger    logging.Logger
	metrics   *prometheus.AppMetrics
	maxUpload int64
	now       func() time.Time
}

// NewService wires the review service.
func NewService(backend Backend, store *Store, notifier Notifier, logger logging.Logger, opts ...Option) Service {
	s := &serviceImpl{
		backend:  backend,
		store:    store,
		notifier: notifier,
		logger:   logging.OrNop(logger).Named(componentName),
		now:      time.Now,
	}
	if s.notifier == nil {
		s.notifier = NopNotifier{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *serviceImpl) Workspace(id string) (*Workspace, error) {
	return s.store.GetOrCreate(id)
}

func (s *serviceImpl) Snapshot(id string) (Snapshot, error) {
	ws, err := s.Workspace(id)
	if err != nil {
		return Snapshot{}, err
	}
	return ws.Snapshot(), nil
}

// AnalyzeClause classifies one clause with the chosen model. An empty mode
// uses the workspace's mode. A backend failure is recorded on the workspace
// as an inline error and returned; it is never retried.
func (s *serviceImpl) AnalyzeClause(ctx context.Context, workspace, text string, mode contract.PredictionKind) (ClauseState, error) {
	ws, err := s.Workspace(workspace)
	if err != nil {
		return ClauseState{}, err
	}
	if mode == "" {
		mode = ws.Mode()
	}
	kind, ok := contract.ParsePredictionKind(string(mode))
	if !ok {
		return ws.Clause(), errors.Newf(errors.ErrCodeModelModeInvalid, "unknown model mode %q", mode)
	}

	if strings.TrimSpace(text) == "" {
		ws.update(s.now(), func(w *Workspace) {
			w.clause.Input = text
			w.clause.Error = MsgClauseEmpty
		})
		return ws.Clause(), errors.New(errors.ErrCodeClauseEmpty, MsgClauseEmpty)
	}

	ws.update(s.now(), func(w *Workspace) {
		w.clause = ClauseState{Input: text, Mode: kind}
	})

	start := time.Now()
	p, err := s.backend.AnalyzeClause(ctx, kind, text)
	prometheus.RecordBackendCall(s.metrics, "analyze_clause_"+string(kind), time.Since(start), err)
	if err != nil {
		appErr := s.backendFailure(ws.ID, err, MsgClauseFailed)
		ws.update(s.now(), func(w *Workspace) { w.clause.Error = MsgClauseFailed })
		return ws.Clause(), appErr
	}
	if p.Source == "" {
		p.Source = kind.DefaultSource()
	}
	label := clause.Label(p)
	prometheus.RecordClause(s.metrics, string(kind), label)

	now := s.now()
	ws.update(now, func(w *Workspace) {
		w.clause.Result = p
		w.clause.AnalyzedAt = now
	})
	s.logger.Info("clause analyzed",
		logging.String("workspace", ws.ID),
		logging.String("mode", string(kind)),
		logging.String("source", p.Source),
		logging.String("label", label))
	return ws.Clause(), nil
}

// ExplainWithLLM attaches an LLM explanation to the current clause result.
func (s *serviceImpl) ExplainWithLLM(ctx context.Context, workspace string) (ClauseState, error) {
	ws, err := s.Workspace(workspace)
	if err != nil {
		return ClauseState{}, err
	}
	current := ws.Clause()
	if current.Result == nil || strings.TrimSpace(current.Input) == "" {
		return current, errors.New(errors.ErrCodeValidation, "analyze a clause before asking for an explanation")
	}

	start := time.Now()
	p, err := s.backend.AnalyzeClause(ctx, contract.KindLLM, current.Input)
	prometheus.RecordBackendCall(s.metrics, "analyze_clause_llm", time.Since(start), err)
	if err != nil {
		appErr := s.backendFailure(ws.ID, err, MsgExplainFailed)
		ws.update(s.now(), func(w *Workspace) { w.clause.ExplainErr = MsgExplainFailed })
		return ws.Clause(), appErr
	}
	if p.Source == "" {
		p.Source = contract.SourceLLM
	}
	ws.update(s.now(), func(w *Workspace) {
		w.clause.Explain = p
		w.clause.ExplainErr = ""
	})
	return ws.Clause(), nil
}

func (s *serviceImpl) ClearClause(workspace string) error {
	ws, err := s.Workspace(workspace)
	if err != nil {
		return err
	}
	ws.update(s.now(), func(w *Workspace) {
		w.clause = ClauseState{Mode: w.mode}
	})
	return nil
}

// AnalyzeDocument sends a PDF to the backend, replaces the workspace's
// document result, loads the viewer from the same bytes and highlights every
// clause. A viewer failure does not fail the analysis.
func (s *serviceImpl) AnalyzeDocument(ctx context.Context, workspace, name string, data []byte) (DocumentState, error) {
	ws, err := s.Workspace(workspace)
	if err != nil {
		return DocumentState{}, err
	}
	if len(data) == 0 {
		return DocumentState{}, errors.New(errors.ErrCodeDocumentEmpty, MsgNoPDF)
	}
	if s.maxUpload > 0 && int64(len(data)) > s.maxUpload {
		return DocumentState{}, errors.Newf(errors.ErrCodeDocumentTooLarge, "document is %d bytes, limit is %d", len(data), s.maxUpload)
	}
	if ct := http.DetectContentType(data); ct != "application/pdf" {
		return DocumentState{}, errors.New(errors.ErrCodeUnsupportedMedia, "only PDF documents are accepted").WithDetail(ct)
	}

	ws.update(s.now(), func(w *Workspace) {
		w.document = DocumentState{Name: name}
	})

	start := time.Now()
	doc, err := s.backend.AnalyzeDocument(ctx, name, data)
	prometheus.RecordBackendCall(s.metrics, "analyze_document", time.Since(start), err)
	if err != nil {
		appErr := s.backendFailure(ws.ID, err, MsgDocumentFailed)
		ws.update(s.now(), func(w *Workspace) { w.document.Error = MsgDocumentFailed })
		return ws.documentState(), appErr
	}
	prometheus.RecordDocument(s.metrics, len(doc.Results))

	now := s.now()
	ws.update(now, func(w *Workspace) {
		w.document.Result = doc
		w.document.AnalyzedAt = now
	})

	if key := s.archiveContract(ctx, ws.ID, name, data); key != "" {
		ws.update(s.now(), func(w *Workspace) { w.document.ArchiveKey = key })
	}

	s.loadViewer(ctx, ws, name, data, doc)
	s.notifier.Notify(ws.ID, LevelSuccess, MsgDocumentAnalyzed)
	s.logger.Info("document analyzed",
		logging.String("workspace", ws.ID),
		logging.String("document", name),
		logging.Int("clauses", len(doc.Results)))
	return ws.documentState(), nil
}

func (w *Workspace) documentState() DocumentState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.document
}

func (s *serviceImpl) loadViewer(ctx context.Context, ws *Workspace, name string, data []byte, doc *contract.DocumentResult) {
	vw := ws.Viewer()
	if err := vw.Load(ctx, name, bytes.NewReader(data), int64(len(data))); err != nil {
		prometheus.RecordViewerLoad(s.metrics, string(vw.State()))
		prometheus.RecordError(s.metrics, "viewer", string(errors.GetCode(err)))
		s.notifier.Notify(ws.ID, LevelWarning, "Could not render the PDF preview")
		return
	}
	prometheus.RecordViewerLoad(s.metrics, string(vw.State()))
	if vw.State() != viewer.StateReady {
		return
	}
	overlays, err := vw.HighlightClauses(viewer.EntriesFromDocument(doc))
	if err != nil {
		s.logger.Warn("highlight pass failed", logging.String("workspace", ws.ID), logging.Err(err))
		return
	}
	s.recordOverlays(overlays)
}

func (s *serviceImpl) recordOverlays(overlays []viewer.Overlay) {
	for _, o := range overlays {
		prometheus.RecordOverlay(s.metrics, o.RiskLevel)
	}
}

func (s *serviceImpl) archiveContract(ctx context.Context, workspace, name string, data []byte) string {
	if s.archive == nil {
		return ""
	}
	obj, err := s.archive.PutContract(ctx, workspace, name, data)
	prometheus.RecordArchiveWrite(s.metrics, "contract", err)
	if err != nil {
		s.logger.Warn("failed to archive contract", logging.String("workspace", workspace), logging.Err(err))
		return ""
	}
	return obj.Key
}

func (s *serviceImpl) ClearDocument(workspace string) error {
	ws, err := s.Workspace(workspace)
	if err != nil {
		return err
	}
	ws.update(s.now(), func(w *Workspace) {
		w.document = DocumentState{}
		w.report = nil
	})
	ws.Viewer().Clear()
	return nil
}

func (s *serviceImpl) document(workspace string) (*Workspace, *contract.DocumentResult, error) {
	ws, err := s.Workspace(workspace)
	if err != nil {
		return nil, nil, err
	}
	doc := ws.Document()
	if doc == nil {
		return ws, nil, errors.New(errors.ErrCodeDocumentNotLoaded, MsgNoDocument)
	}
	return ws, doc, nil
}

// HighlightAll redraws one overlay per block of every clause.
func (s *serviceImpl) HighlightAll(workspace string) ([]viewer.Overlay, error) {
	ws, doc, err := s.document(workspace)
	if err != nil {
		return nil, err
	}
	overlays, err := ws.Viewer().HighlightClauses(viewer.EntriesFromDocument(doc))
	if err != nil {
		return nil, err
	}
	s.recordOverlays(overlays)
	return overlays, nil
}

// Focus highlights a single clause and scrolls to its first block.
func (s *serviceImpl) Focus(workspace string, clauseIndex int) ([]viewer.Overlay, error) {
	ws, doc, err := s.document(workspace)
	if err != nil {
		return nil, err
	}
	for _, c := range doc.Results {
		if c.ClauseIndex != clauseIndex {
			continue
		}
		entry := viewer.EntryFromClause(c)
		overlays, err := ws.Viewer().HighlightClauses([]viewer.Entry{entry})
		if err != nil {
			return nil, err
		}
		s.recordOverlays(overlays)
		if !ws.Viewer().ScrollToClause(entry) {
			s.logger.Debug("clause has no rendered page to scroll to",
				logging.String("workspace", ws.ID), logging.Int("clause_index", clauseIndex))
		}
		return overlays, nil
	}
	return nil, errors.Newf(errors.ErrCodeNotFound, "clause %d not found", clauseIndex)
}

// Overlays advances the overlay timers and returns what is still drawn.
func (s *serviceImpl) Overlays(workspace string) ([]viewer.Overlay, error) {
	ws, err := s.Workspace(workspace)
	if err != nil {
		return nil, err
	}
	ws.Viewer().Tick(s.now())
	return ws.Viewer().Overlays(), nil
}

func (s *serviceImpl) Metrics(workspace string) (*dashboard.Metrics, error) {
	ws, err := s.Workspace(workspace)
	if err != nil {
		return nil, err
	}
	return dashboard.Compute(ws.Document(), ws.Sensitivity())
}

func (s *serviceImpl) Clauses(workspace string, q dashboard.Query) ([]dashboard.ClauseView, error) {
	q, err := q.Normalize()
	if err != nil {
		return nil, err
	}
	ws, doc, err := s.document(workspace)
	if err != nil {
		return nil, err
	}
	return dashboard.Filter(dashboard.ClauseViews(doc, ws.Sensitivity()), q), nil
}

// Export renders the current document locally.
func (s *serviceImpl) Export(workspace string, format export.Format) ([]byte, error) {
	ws, err := s.Workspace(workspace)
	if err != nil {
		return nil, err
	}
	out, err := export.Document(ws.Document(), format)
	if err != nil {
		s.notifier.Notify(ws.ID, LevelError, "Failed to export "+strings.ToUpper(string(format)))
		return nil, err
	}
	prometheus.RecordExport(s.metrics, string(format))
	s.notifier.Notify(ws.ID, LevelSuccess, "Exported to "+strings.ToUpper(string(format))+" successfully!")
	return out, nil
}

// GenerateReport asks the backend for a PDF report of the current document.
func (s *serviceImpl) GenerateReport(ctx context.Context, workspace string) (*Report, error) {
	ws, doc, err := s.document(workspace)
	if err != nil {
		if ws != nil {
			s.notifier.Notify(ws.ID, LevelWarning, MsgNoDocument)
		}
		return nil, err
	}

	start := time.Now()
	pdf, err := s.backend.GenerateReport(ctx, doc.Results)
	if err == nil && len(pdf) == 0 {
		err = errors.New(errors.ErrCodeReportFailed, MsgEmptyReport)
	}
	prometheus.RecordBackendCall(s.metrics, "generate_report", time.Since(start), err)
	if err != nil {
		msg := MsgReportFailed
		if errors.IsCode(err, errors.ErrCodeReportFailed) {
			msg = MsgEmptyReport
		}
		return nil, s.backendFailure(ws.ID, err, msg)
	}

	ref := ReportRef{Filename: minio.ReportFilename, Size: len(pdf), GeneratedAt: s.now()}
	if s.archive != nil {
		obj, aerr := s.archive.PutReport(ctx, ws.ID, pdf)
		prometheus.RecordArchiveWrite(s.metrics, "report", aerr)
		if aerr != nil {
			s.logger.Warn("failed to archive report", logging.String("workspace", ws.ID), logging.Err(aerr))
		} else {
			ref.ArchiveKey = obj.Key
		}
	}
	ws.update(s.now(), func(w *Workspace) {
		r := ref
		w.report = &r
	})
	s.notifier.Notify(ws.ID, LevelSuccess, MsgReportReady)
	return &Report{Filename: ref.Filename, Data: pdf, Ref: ref}, nil
}

// AuditLog fetches the backend audit trail filtered by action type.
func (s *serviceImpl) AuditLog(ctx context.Context, action string) ([]dashboard.AuditView, error) {
	start := time.Now()
	log, err := s.backend.AuditLog(ctx)
	prometheus.RecordBackendCall(s.metrics, "audit_log", time.Since(start), err)
	if err != nil {
		return nil, s.backendFailure("", err, "Failed to load audit log")
	}
	return dashboard.AuditViews(log, action), nil
}

func (s *serviceImpl) SetSensitivity(workspace, name string) (clause.Profile, error) {
	p, ok := clause.LookupProfile(name)
	if !ok {
		return clause.Profile{}, errors.Newf(errors.ErrCodeSensitivityUnknown, "unknown sensitivity %q", name)
	}
	ws, err := s.Workspace(workspace)
	if err != nil {
		return clause.Profile{}, err
	}
	ws.update(s.now(), func(w *Workspace) { w.sensitivity = string(p.Name) })
	return p, nil
}

func (s *serviceImpl) SetMode(workspace, mode string) (contract.PredictionKind, error) {
	kind, ok := contract.ParsePredictionKind(mode)
	if !ok {
		return "", errors.Newf(errors.ErrCodeModelModeInvalid, "unknown model mode %q", mode)
	}
	ws, err := s.Workspace(workspace)
	if err != nil {
		return "", err
	}
	ws.update(s.now(), func(w *Workspace) {
		w.mode = kind
		w.clause.Mode = kind
	})
	return kind, nil
}

// Ready reports whether the backend answers.
func (s *serviceImpl) Ready(ctx context.Context) error {
	if err := s.backend.Ping(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeBackendUnavailable, "analysis backend is not reachable")
	}
	return nil
}

// backendFailure classifies a backend error, logs it and tells the user.
func (s *serviceImpl) backendFailure(workspace string, err error, message string) *errors.AppError {
	code := errors.ErrCodeBackendUnavailable
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		code = errors.ErrCodeBackendRejected
	case errors.Is(err, context.DeadlineExceeded):
		code = errors.ErrCodeTimeout
	case errors.GetCode(err) != errors.CodeUnknown:
		code = errors.GetCode(err)
	}
	prometheus.RecordError(s.metrics, componentName, string(code))
	s.logger.Warn(message, logging.String("workspace", workspace), logging.String("code", string(code)), logging.Err(err))
	if workspace != "" {
		s.notifier.Notify(workspace, LevelError, message)
	}
	return errors.Wrap(err, code, message)
}
