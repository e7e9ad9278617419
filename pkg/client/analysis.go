package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"

	"github.com/turtacn/ClauseLens/pkg/errors"
	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

// Backend endpoints.
const (
	PathAnalyzeClause  = "/analyze_clause"
	PathGNNPredict     = "/gnn_predict"
	PathHybridPredict  = "/hybrid_predict"
	PathAnalyzeDoc     = "/analyze_document"
	PathGenerateReport = "/generate_report"
	PathAuditLog       = "/audit_log"
	PathHealth         = "/"
)

type clauseRequest struct {
	Text      string   `json:"text"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// HybridOption tunes a hybrid prediction.
type HybridOption func(*clauseRequest)

// WithFallbackThreshold overrides the GNN confidence below which the backend
// falls back to the LLM.
func WithFallbackThreshold(t float64) HybridOption {
	return func(r *clauseRequest) { r.Threshold = &t }
}

// AnalyzeClauseLLM runs the LLM classifier on one clause.
func (c *Client) AnalyzeClauseLLM(ctx context.Context, text string) (*contract.Prediction, error) {
	return c.predict(ctx, PathAnalyzeClause, contract.KindLLM, clauseRequest{Text: text})
}

// AnalyzeClauseGNN runs only the graph model.
func (c *Client) AnalyzeClauseGNN(ctx context.Context, text string) (*contract.Prediction, error) {
	return c.predict(ctx, PathGNNPredict, contract.KindGNN, clauseRequest{Text: text})
}

// AnalyzeClauseHybrid runs the graph model and falls back to the LLM when
// the graph model is not confident.
func (c *Client) AnalyzeClauseHybrid(ctx context.Context, text string, opts ...HybridOption) (*contract.Prediction, error) {
	req := clauseRequest{Text: text}
	for _, opt := range opts {
		opt(&req)
	}
	return c.predict(ctx, PathHybridPredict, contract.KindHybrid, req)
}

// AnalyzeClause dispatches on kind.
func (c *Client) AnalyzeClause(ctx context.Context, kind contract.PredictionKind, text string) (*contract.Prediction, error) {
	switch kind {
	case contract.KindLLM:
		return c.AnalyzeClauseLLM(ctx, text)
	case contract.KindGNN:
		return c.AnalyzeClauseGNN(ctx, text)
	case contract.KindHybrid:
		if c.hybridThreshold != nil {
			return c.AnalyzeClauseHybrid(ctx, text, WithFallbackThreshold(*c.hybridThreshold))
		}
		return c.AnalyzeClauseHybrid(ctx, text)
	default:
		return nil, errors.Newf(errors.ErrCodeModelModeInvalid, "unknown model mode %q", kind)
	}
}

func (c *Client) predict(ctx context.Context, path string, kind contract.PredictionKind, body clauseRequest) (*contract.Prediction, error) {
	req, err := jsonRequest(http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	p, err := contract.DecodePrediction(raw, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return p, nil
}

// AnalyzeDocument uploads a PDF as the multipart field "file".
func (c *Client) AnalyzeDocument(ctx context.Context, filename string, data []byte) (*contract.DocumentResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
	h.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	payload := buf.Bytes()

	raw, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        PathAnalyzeDoc,
		contentType: mw.FormDataContentType(),
		accept:      "application/json",
		newBody:     func() (io.Reader, error) { return bytes.NewReader(payload), nil },
	})
	if err != nil {
		return nil, err
	}
	var doc contract.DocumentResult
	if err := doc.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &doc, nil
}

type reportRequest struct {
	Results []contract.ClauseResult `json:"results"`
}

// GenerateReport asks the backend to render a PDF report of results. An
// empty body is reported as ErrCodeReportFailed.
func (c *Client) GenerateReport(ctx context.Context, results []contract.ClauseResult) ([]byte, error) {
	if results == nil {
		results = []contract.ClauseResult{}
	}
	req, err := jsonRequest(http.MethodPost, PathGenerateReport, reportRequest{Results: results})
	if err != nil {
		return nil, err
	}
	req.accept = "application/pdf"
	pdf, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(pdf) == 0 {
		return nil, errors.New(errors.ErrCodeReportFailed, "Empty PDF received from backend")
	}
	return pdf, nil
}

// AuditLog fetches the backend's audit trail.
func (c *Client) AuditLog(ctx context.Context) (*contract.AuditLog, error) {
	var log contract.AuditLog
	if err := c.get(ctx, PathAuditLog, &log); err != nil {
		return nil, err
	}
	if log.Logs == nil {
		log.Logs = []contract.AuditEntry{}
	}
	return &log, nil
}

// Ping checks that the backend answers on its root path.
func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, PathHealth, nil)
}
