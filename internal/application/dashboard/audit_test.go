package dashboard

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

func sampleLog() *contract.AuditLog {
	return &contract.AuditLog{Logs: []contract.AuditEntry{
		{ActionType: contract.ActionClauseAnalysis, Timestamp: "2024-01-01T10:00:00", ClauseText: "Pay on time.", Result: json.RawMessage(`{"risk_level":"LOW","confidence":0.91}`)},
		{ActionType: contract.ActionDocumentAnalysis, Timestamp: "2024-01-01T11:00:00", DocumentName: "msa.pdf"},
		{ActionType: contract.ActionGraphGeneration, Timestamp: "2024-01-01T12:00:00"},
	}}
}

func TestFilterAudit(t *testing.T) {
	logs := sampleLog().Logs
	assert.Len(t, FilterAudit(logs, "all"), 3)
	assert.Len(t, FilterAudit(logs, ""), 3)

	got := FilterAudit(logs, contract.ActionDocumentAnalysis)
	require.Len(t, got, 1)
	assert.Equal(t, "msa.pdf", got[0].DocumentName)

	assert.Empty(t, FilterAudit(logs, "export"))
	assert.NotNil(t, FilterAudit(nil, "all"))
}

func TestNewAuditView(t *testing.T) {
	v := NewAuditView(sampleLog().Logs[0])
	assert.Equal(t, "clause analysis", v.Title)
	assert.Equal(t, "Pay on time.", v.Excerpt)
	assert.Equal(t, "LOW", v.Result)
	require.NotNil(t, v.Confidence)
	assert.Equal(t, 0.91, *v.Confidence)
	assert.Equal(t, "#3b82f6", v.Colors.Border)
}

func TestNewAuditView_Truncates(t *testing.T) {
	long := strings.Repeat("é", 200)
	v := NewAuditView(contract.AuditEntry{ActionType: "x", ClauseText: long})
	assert.Equal(t, strings.Repeat("é", 150)+"...", v.Excerpt)
	assert.Equal(t, "#6b7280", v.Colors.Border)
}

func TestNewAuditView_ResultFallbacks(t *testing.T) {
	v := NewAuditView(contract.AuditEntry{Result: json.RawMessage(`{"risk_label":"HIGH"}`)})
	assert.Equal(t, "HIGH", v.Result)
	assert.Nil(t, v.Confidence)

	v = NewAuditView(contract.AuditEntry{Result: json.RawMessage(`{}`)})
	assert.Equal(t, "N/A", v.Result)

	v = NewAuditView(contract.AuditEntry{Result: json.RawMessage(`{"risk_level":2}`)})
	assert.Equal(t, "2", v.Result)
}

func TestAuditViews(t *testing.T) {
	assert.Len(t, AuditViews(sampleLog(), contract.ActionClauseAnalysis), 1)
	assert.Empty(t, AuditViews(nil, "all"))
}
