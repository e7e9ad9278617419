package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ClauseLens/internal/domain/clause"
	"github.com/turtacn/ClauseLens/pkg/errors"
	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

func page(n int) *int { return &n }

func sampleDoc() *contract.DocumentResult {
	return &contract.DocumentResult{Results: []contract.ClauseResult{
		{
			ClauseIndex: 0,
			Text:        "Supplier may terminate this agreement at any time.",
			Risk:        &contract.RiskDetail{RiskLevel: contract.TextLevel("HIGH"), Explanation: "Unilateral termination with no notice."},
			Blocks:      []contract.Block{{Page: 0, BBox: []float64{10, 20, 110, 70}}},
		},
		{
			ClauseIndex: 1,
			Text:        "All fees are payable within 30 days.",
			RiskLevel:   contract.NumericLevel(1),
		},
		{
			ClauseIndex: 2,
			Text:        "Confidential information must be protected.",
			Risk:        &contract.RiskDetail{RiskLevel: contract.TextLevel("low")},
			Page:        page(1),
			BBox:        []float64{0, 0, 10, 10},
		},
		{
			ClauseIndex: 3,
			Text:        "Notices are sent by post.",
		},
	}}
}

func TestCompute_NoDocument(t *testing.T) {
	_, err := Compute(nil, "balanced")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDocumentNotLoaded))
}

func TestCompute_Counts(t *testing.T) {
	m, err := Compute(sampleDoc(), "aggressive")
	require.NoError(t, err)

	assert.Equal(t, 4, m.TotalClauses)
	assert.Equal(t, 1, m.HighRisk)
	assert.Equal(t, 1, m.MediumRisk)
	assert.Equal(t, 1, m.LowRisk)
	assert.Equal(t, 25.0, m.HighPercent)
	assert.Equal(t, 25.0, m.LowPercent)

	// 85 + 50 + 25 + 25 (no level counts as low) = 185 / 4 = 46.25
	assert.Equal(t, 46, m.OverallScore)
	assert.Equal(t, contract.RiskMedium, m.OverallLevel)
	assert.Equal(t, "MEDIUM RISK", m.OverallLabel)
	assert.Equal(t, clause.RiskColor(46), m.Palette)
	assert.Equal(t, clause.SensitivityAggressive, m.Sensitivity.Name)
	assert.Equal(t, clause.Advisory, m.Advisory)
}

func TestCompute_DistributionSkipsEmpty(t *testing.T) {
	doc := &contract.DocumentResult{Results: []contract.ClauseResult{
		{Text: "a", RiskLevel: contract.TextLevel("HIGH")},
		{Text: "b"},
	}}
	m, err := Compute(doc, "")
	require.NoError(t, err)
	assert.Equal(t, []Slice{
		{Name: "High Risk", Value: 1, Color: "#ef4444"},
		{Name: "Low Risk", Value: 1, Color: "#10b981"},
	}, m.Distribution)
	assert.Equal(t, 0, m.LowRisk, "clauses without a level are charted as low but not counted")
	assert.Equal(t, clause.SensitivityBalanced, m.Sensitivity.Name)
}

func TestCompute_Empty(t *testing.T) {
	m, err := Compute(&contract.DocumentResult{}, "balanced")
	require.NoError(t, err)
	assert.Equal(t, 0, m.OverallScore)
	assert.Equal(t, 0.0, m.HighPercent)
	assert.Empty(t, m.Distribution)
	assert.NotNil(t, m.Distribution)
	assert.Empty(t, m.Categories)
}

func TestCompute_Categories(t *testing.T) {
	m, err := Compute(sampleDoc(), "balanced")
	require.NoError(t, err)

	require.Len(t, m.Categories, 4)
	assert.Equal(t, clause.CategoryTermination, m.Categories[0].ID)
	assert.Equal(t, 1, m.Categories[0].HighRisk)
	assert.Equal(t, clause.CategoryPayment, m.Categories[1].ID)
	assert.Equal(t, clause.CategoryConfidentiality, m.Categories[2].ID)
	assert.Equal(t, clause.CategoryGeneral, m.Categories[3].ID)

	assert.Equal(t, []Bar{
		{Category: clause.CategoryTermination, Name: "Termination", Count: 1, Color: "#ef4444"},
		{Category: clause.CategoryPayment, Name: "Payment", Count: 1, Color: "#3b82f6"},
		{Category: clause.CategoryConfidentiality, Name: "Confidentiality", Count: 1, Color: "#8b5cf6"},
		{Category: clause.CategoryGeneral, Name: "General", Count: 1, Color: "#6b7280"},
	}, m.CategoryBars)
}
