package clause

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

func TestSimplifyExplanation(t *testing.T) {
	assert.Equal(t, NoExplanation, SimplifyExplanation(""))
	assert.Equal(t,
		"A one-sided right under the legal authority of dispute resolution",
		SimplifyExplanation("A Unilateral right under the JURISDICTION of arbitration"))
	assert.Equal(t, "responsibility for damages of private/confidential data",
		SimplifyExplanation("indemnification of proprietary data"))
}

func TestDetectedDeviations(t *testing.T) {
	assert.Empty(t, DetectedDeviations(""))
	assert.NotNil(t, DetectedDeviations(""))

	got := DetectedDeviations("Termination without notice is one-sided; the final decision rests with Vendor.")
	assert.Equal(t, []string{
		"Missing notice period requirement",
		"Unilateral/one-sided terms",
		"No appeal or review process",
	}, got)
}

func TestMissingProtections(t *testing.T) {
	assert.Empty(t, MissingProtections("notice and compensation"), "no missing marker")

	got := MissingProtections("The clause lacks a notice period, mutual consent and any limitation of liability.")
	assert.Equal(t, []string{
		"Notice period clause",
		"Mutual agreement requirement",
		"Liability limitation clause",
	}, got)

	got = MissingProtections("Missing compensation and review rights.")
	assert.Equal(t, []string{"Compensation or remedy clause", "Appeal or review mechanism"}, got)
}

func TestRiskFactors(t *testing.T) {
	assert.Empty(t, RiskFactors("", "high"))

	got := RiskFactors("Broad waiver at the sole discretion of Licensor, ambiguous scope", "HIGH")
	assert.Equal(t, []string{
		"Vague or ambiguous language",
		"Overly broad scope",
		"Excessive discretionary power",
		"Waiver of important rights",
		HighRiskFactor,
	}, got)

	assert.NotContains(t, RiskFactors("unlimited", "medium"), HighRiskFactor)
}

func TestExplain_Fallbacks(t *testing.T) {
	e := Explain(contract.RiskDetail{Issue: "unlimited liability", RiskLevel: contract.TextLevel("HIGH")})
	assert.Equal(t, "unlimited liability", e.OriginalExplanation)
	assert.Contains(t, e.DetectedDeviations, "Unlimited liability or scope")
	assert.Contains(t, e.RiskFactors, HighRiskFactor)

	empty := Explain(contract.RiskDetail{})
	assert.Equal(t, NoExplanation, empty.SimplifiedExplanation)
	assert.NotNil(t, empty.DetectedDeviations)
	assert.NotNil(t, empty.MissingProtections)
	assert.NotNil(t, empty.RiskFactors)
}

func TestExplainPrediction_HybridReadsLLMHalf(t *testing.T) {
	p := &contract.Prediction{
		Kind: contract.KindHybrid,
		LLM: &contract.Prediction{
			Kind:             contract.KindLLM,
			RiskLevel:        contract.TextLevel("HIGH"),
			Explanation:      "vague termination rights",
			SuggestedRewrite: "Either party may terminate with 30 days notice.",
		},
	}
	e := ExplainPrediction(p)
	assert.Equal(t, "vague termination rights", e.OriginalExplanation)
	assert.Contains(t, e.RiskFactors, HighRiskFactor)
	assert.Equal(t, "Either party may terminate with 30 days notice.", e.SuggestedRewrite)
}

func TestSections(t *testing.T) {
	e := Explain(contract.RiskDetail{
		Explanation:      "unilateral termination, missing notice",
		SuggestedRewrite: "Mutual termination with notice.",
	})
	sections := Sections(e)

	titles := make([]string, 0, len(sections))
	for _, s := range sections {
		titles = append(titles, s.Title)
	}
	require.Equal(t, []string{"Explanation", "Detected Issues", "Missing Protections", "Risk Factors", "Suggested Safer Alternative"}, titles)
	assert.Equal(t, "one-sided termination, missing notice", sections[0].Content)
	assert.Equal(t, "Mutual termination with notice.", sections[4].Content)

	assert.Len(t, Sections(Explainability{}), 0)
}
