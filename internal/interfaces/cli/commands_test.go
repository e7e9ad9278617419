package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ClauseLens/internal/infrastructure/storage/minio"
	"github.com/turtacn/ClauseLens/internal/testutil"
	"github.com/turtacn/ClauseLens/pkg/errors"
	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

var pdfBytes = testutil.MinimalPDF

func sampleDocument() *contract.DocumentResult { return testutil.SampleDocument() }

func TestAnalyzeClause_Text(t *testing.T) {
	conf := 0.88
	fb := &fakeBackend{prediction: &contract.Prediction{
		Kind:          contract.KindGNN,
		Source:        contract.SourceGNN,
		RiskLevel:     contract.NumericLevel(2),
		Confidence:    &conf,
		Probabilities: []float64{0.02, 0.1, 0.88},
	}}

	out, _, err := runCLI(t, fb, "analyze", "clause", "--mode", "gnn", "  Payment is due in 90 days.  ")
	require.NoError(t, err)
	assert.Equal(t, contract.KindGNN, fb.gotKind)
	assert.Equal(t, "Payment is due in 90 days.", fb.gotText)
	assert.Contains(t, out, "Confidence:  88.0%")
	assert.Contains(t, out, "Probability: low 2.0%  medium 10.0%  high 88.0%")
	assert.Contains(t, out, "Payment")
}

func TestAnalyzeClause_DefaultModeAndJSON(t *testing.T) {
	fb := &fakeBackend{prediction: &contract.Prediction{
		Kind:        contract.KindHybrid,
		Source:      contract.SourceHybridLLM,
		RiskLabel:   "MEDIUM",
		Explanation: "One-sided termination clause.",
	}}

	out, _, err := runCLI(t, fb, "-o", "json", "analyze", "clause", "Vendor may terminate at will.")
	require.NoError(t, err)
	assert.Equal(t, contract.KindHybrid, fb.gotKind)

	var got ClauseAnalysis
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "MEDIUM", got.Label)
	assert.Equal(t, contract.SourceHybridLLM, got.Source)
	assert.Equal(t, "One-sided termination clause.", got.Explainability.OriginalExplanation)
}

func TestAnalyzeClause_FileAndStdin(t *testing.T) {
	text := "Confidential information must be protected."
	fb := &fakeBackend{prediction: &contract.Prediction{Kind: contract.KindLLM, RiskLabel: "LOW"}}

	p := writeFile(t, "clause.txt", []byte(text))
	_, _, err := runCLI(t, fb, "analyze", "clause", "--mode", "llm", "--file", p)
	require.NoError(t, err)
	assert.Equal(t, text, fb.gotText)

	fb.gotText = ""
	out, _, err := runCLIWithInput(t, fb, strings.NewReader(text+"\n"), "-o", "table", "analyze", "clause", "--mode", "llm", "-f", "-")
	require.NoError(t, err)
	assert.Equal(t, text, fb.gotText)
	assert.Contains(t, out, "Confidentiality")
}

func TestAnalyzeClause_Errors(t *testing.T) {
	fb := &fakeBackend{}

	_, _, err := runCLI(t, fb, "analyze", "clause", "   ")
	assert.True(t, errors.IsCode(err, errors.ErrCodeClauseEmpty))

	_, _, err = runCLI(t, fb, "analyze", "clause")
	assert.True(t, errors.IsCode(err, errors.ErrCodeClauseEmpty))

	_, _, err = runCLI(t, fb, "analyze", "clause", "--mode", "bert", "x")
	assert.True(t, errors.IsCode(err, errors.ErrCodeModelModeInvalid))

	_, _, err = runCLI(t, nil, "analyze", "clause", "x")
	assert.True(t, errors.IsCode(err, errors.ErrCodeBackendUnavailable))

	fb.err = assert.AnError
	_, _, err = runCLI(t, fb, "analyze", "clause", "x")
	assert.True(t, errors.IsCode(err, errors.ErrCodeBackendUnavailable))
}

func TestAnalyzeDocument(t *testing.T) {
	fb := &fakeBackend{document: sampleDocument()}
	pdf := writeFile(t, "msa.pdf", pdfBytes)

	out, _, err := runCLI(t, fb, "analyze", "document", pdf)
	require.NoError(t, err)
	assert.Equal(t, "msa.pdf", fb.gotFilename)
	assert.Equal(t, len(pdfBytes), fb.gotBytes)
	assert.Contains(t, out, "msa.pdf  2 clauses")
	assert.Contains(t, out, "High 1 (50%)")
	assert.Contains(t, out, "CATEGORY")
}

func TestAnalyzeDocument_FiltersAndJSON(t *testing.T) {
	fb := &fakeBackend{document: sampleDocument()}
	pdf := writeFile(t, "msa.pdf", pdfBytes)

	out, _, err := runCLI(t, fb, "-o", "json", "analyze", "document", pdf, "--risk", "high", "--sensitivity", "Conservative")
	require.NoError(t, err)

	var got struct {
		Document string `json:"document"`
		Metrics  struct {
			TotalClauses int `json:"total_clauses"`
			HighRisk     int `json:"high_risk"`
			Sensitivity  struct {
				Name string `json:"name"`
			} `json:"sensitivity"`
		} `json:"metrics"`
		Clauses []struct {
			Index int `json:"clause_index"`
		} `json:"clauses"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "msa.pdf", got.Document)
	assert.Equal(t, 2, got.Metrics.TotalClauses)
	assert.Equal(t, 1, got.Metrics.HighRisk)
	assert.Equal(t, "conservative", got.Metrics.Sensitivity.Name)
	require.Len(t, got.Clauses, 1)
	assert.Equal(t, 1, got.Clauses[0].Index)
}

func TestAnalyzeDocument_Errors(t *testing.T) {
	fb := &fakeBackend{document: sampleDocument()}

	_, _, err := runCLI(t, fb, "analyze", "document", filepath.Join(t.TempDir(), "missing.pdf"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	_, _, err = runCLI(t, fb, "analyze", "document", writeFile(t, "empty.pdf", nil))
	assert.True(t, errors.IsCode(err, errors.ErrCodeDocumentEmpty))

	pdf := writeFile(t, "c.pdf", pdfBytes)
	_, _, err = runCLI(t, fb, "analyze", "document", pdf, "--sensitivity", "reckless")
	assert.True(t, errors.IsCode(err, errors.ErrCodeSensitivityUnknown))

	_, _, err = runCLI(t, fb, "analyze", "document", pdf, "--sort", "name")
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
	assert.Empty(t, fb.gotFilename, "invalid flags must fail before the upload")
}

func TestInspect(t *testing.T) {
	out, _, err := runCLI(t, nil, "-o", "json", "inspect",
		"The Supplier's liability shall be unlimited.",
		"--level", "high",
		"--explanation", "Unlimited liability is a significant risk.",
		"--profile", "aggressive")
	require.NoError(t, err)

	var got Inspection
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "high", got.Level)
	assert.GreaterOrEqual(t, got.Score, 75)
	assert.Equal(t, "aggressive", string(got.Profile.Name))
	assert.Contains(t, got.Explainability.RiskFactors, "Classified as high risk by analysis")
}

func TestInspect_DefaultsToLowLevel(t *testing.T) {
	got := Inspect("Notices must be in writing.", "", "", "balanced")
	assert.Equal(t, "low", got.Level)
	assert.Equal(t, 25, got.Score)
	assert.Equal(t, contract.RiskLow, got.Band)

	_, _, err := runCLI(t, nil, "inspect", "x", "--profile", "nope")
	assert.True(t, errors.IsCode(err, errors.ErrCodeSensitivityUnknown))
}

func TestReport(t *testing.T) {
	fb := &fakeBackend{document: sampleDocument(), report: []byte("%PDF-report")}
	pdf := writeFile(t, "msa.pdf", pdfBytes)
	dest := filepath.Join(t.TempDir(), "out.pdf")

	out, _, err := runCLI(t, fb, "report", pdf, "-O", dest)
	require.NoError(t, err)
	assert.Equal(t, 2, fb.gotReportLen)
	assert.Contains(t, out, "wrote "+dest)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-report", string(data))
}

func TestReport_FromResultsFile(t *testing.T) {
	fb := &fakeBackend{report: []byte("%PDF")}
	results := writeFile(t, "r.json", []byte(`{"clauses":[{"text":"a","risk_level":"high"},{"text":"b"}]}`))

	out, _, err := runCLI(t, fb, "report", "--results", results, "-O", "-")
	require.NoError(t, err)
	assert.Equal(t, "%PDF", out)
	assert.Equal(t, 2, fb.gotReportLen)
	assert.Empty(t, fb.gotFilename)
}

func TestReport_Errors(t *testing.T) {
	pdf := writeFile(t, "msa.pdf", pdfBytes)

	_, _, err := runCLI(t, &fakeBackend{}, "report")
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	_, _, err = runCLI(t, &fakeBackend{}, "report", pdf, "--results", "r.json")
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	empty := writeFile(t, "r.json", []byte(`{"results":[]}`))
	_, _, err = runCLI(t, &fakeBackend{}, "report", "--results", empty)
	assert.True(t, errors.IsCode(err, errors.ErrCodeExportNoData))

	dest := filepath.Join(t.TempDir(), "x.pdf")
	fb := &fakeBackend{document: sampleDocument(), report: nil}
	_, _, err = runCLI(t, fb, "report", pdf, "-O", dest)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeReportFailed))
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestReport_DefaultFilename(t *testing.T) {
	cmd := NewReportCmd()
	assert.Equal(t, minio.ReportFilename, cmd.Flags().Lookup("out").DefValue)
}

func TestExport(t *testing.T) {
	fb := &fakeBackend{document: sampleDocument()}
	pdf := writeFile(t, "msa.pdf", pdfBytes)

	out, _, err := runCLI(t, fb, "export", pdf, "--format", "CSV", "-O", "-")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Clause Index,Category,Risk Level,Risk Score,Text", lines[0])

	dest := filepath.Join(t.TempDir(), "a.json")
	out, _, err = runCLI(t, fb, "export", pdf, "--format", "json", "-O", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "2 clauses")
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestExport_Errors(t *testing.T) {
	_, _, err := runCLI(t, &fakeBackend{}, "export", "--results", "r.json", "--format", "xml")
	assert.True(t, errors.IsCode(err, errors.ErrCodeExportFormat))

	empty := writeFile(t, "r.json", []byte(`[]`))
	_, _, err = runCLI(t, &fakeBackend{}, "export", "--results", empty, "-O", "-")
	assert.True(t, errors.IsCode(err, errors.ErrCodeExportNoData))

	bad := writeFile(t, "bad.json", []byte(`{not json`))
	_, _, err = runCLI(t, &fakeBackend{}, "export", "--results", bad)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestReadResultsFile_BareArray(t *testing.T) {
	p := writeFile(t, "r.json", []byte(`[{"text":"a"},{"text":"b"}]`))
	doc, err := readResultsFile(p)
	require.NoError(t, err)
	require.Len(t, doc.Results, 2)
	assert.Equal(t, 1, doc.Results[1].ClauseIndex)
}

func TestAudit(t *testing.T) {
	fb := &fakeBackend{audit: &contract.AuditLog{Logs: []contract.AuditEntry{
		{ActionType: contract.ActionClauseAnalysis, Timestamp: "2024-05-01T10:00:00", ClauseText: "Payment is due."},
		{ActionType: contract.ActionDocumentAnalysis, Timestamp: "2024-05-01T11:00:00", DocumentName: "msa.pdf"},
	}}}

	out, _, err := runCLI(t, fb, "-o", "json", "audit", "--action", "document_analysis")
	require.NoError(t, err)
	var got AuditList
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 1, got.Total)
	assert.Equal(t, "msa.pdf", got.Logs[0].DocumentName)

	out, _, err = runCLI(t, fb, "-o", "table", "audit")
	require.NoError(t, err)
	assert.Contains(t, out, "TIMESTAMP")
	assert.Contains(t, out, "Payment is due.")

	_, _, err = runCLI(t, fb, "audit", "--action", "graph")
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestAudit_Empty(t *testing.T) {
	out, _, err := runCLI(t, &fakeBackend{audit: &contract.AuditLog{}}, "audit")
	require.NoError(t, err)
	assert.Contains(t, out, "No audit entries.")
}
