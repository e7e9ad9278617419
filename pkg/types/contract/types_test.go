package contract

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRiskLevel(t *testing.T) {
	tests := map[string]RiskLevel{
		"HIGH":    RiskHigh,
		"high":    RiskHigh,
		" Medium": RiskMedium,
		"low":     RiskLow,
		"2":       RiskUnknown,
		"":        RiskUnknown,
		"severe":  RiskUnknown,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseRiskLevel(in), in)
	}
}

func TestLevelValue_JSON(t *testing.T) {
	var v struct {
		A *LevelValue `json:"a"`
		B *LevelValue `json:"b"`
		C *LevelValue `json:"c"`
		D *LevelValue `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"HIGH","b":2,"c":true,"d":null}`), &v))

	assert.Equal(t, "HIGH", v.A.Text())
	assert.False(t, v.A.IsNumeric())
	assert.True(t, v.B.IsNumeric())
	assert.Equal(t, 2.0, v.B.Number())
	assert.Equal(t, "", v.C.String())
	assert.Nil(t, v.D)

	out, err := json.Marshal(v.B)
	require.NoError(t, err)
	assert.JSONEq(t, `2`, string(out))
}

func TestDocumentResult_Decode(t *testing.T) {
	body := `{
		"total_clauses": 3,
		"results": [
			{"clause_id": 7, "heading": "Termination", "text": "Either party may terminate.",
			 "page": 1, "bbox": [1, 2, 3, 4],
			 "risk": {"risk_level": "HIGH", "explanation": "unilateral"}},
			{"clause_index": 9, "clause_text": "Fees are due monthly.", "risk_level": "low",
			 "blocks": [{"page": 0, "bbox": [10, 20, 110, 70]}, {"bbox": [1]}]},
			"garbage",
			{"text": 42}
		],
		"graph": {"nodes": [], "edges": []}
	}`

	var doc DocumentResult
	require.NoError(t, json.Unmarshal([]byte(body), &doc))

	require.Len(t, doc.Results, 3)
	assert.Equal(t, 3, doc.TotalClauses)
	assert.NotNil(t, doc.Graph)

	first := doc.Results[0]
	assert.Equal(t, 0, first.ClauseIndex)
	assert.Equal(t, "7", first.ClauseID)
	assert.Equal(t, "HIGH", first.EffectiveRisk().RiskLevel.Text())
	assert.Equal(t, []Block{{Page: 1, BBox: []float64{1, 2, 3, 4}}}, first.EffectiveBlocks())

	second := doc.Results[1]
	assert.Equal(t, 9, second.ClauseIndex)
	assert.Equal(t, "Fees are due monthly.", second.Text)
	assert.Equal(t, "low", second.EffectiveRisk().RiskLevel.Text())
	blocks := second.EffectiveBlocks()
	require.Len(t, blocks, 2)
	assert.True(t, blocks[0].Valid())
	assert.False(t, blocks[1].Valid())

	third := doc.Results[2]
	assert.Equal(t, 3, third.ClauseIndex)
	assert.Empty(t, third.Text)
	assert.Nil(t, third.EffectiveBlocks())
}

func TestDocumentResult_LegacyClausesKey(t *testing.T) {
	var doc DocumentResult
	require.NoError(t, json.Unmarshal([]byte(`{"clauses":[{"text":"a"}]}`), &doc))
	require.Len(t, doc.Results, 1)
	assert.Equal(t, "a", doc.Results[0].Text)
}

func TestDocumentResult_RoundTrip(t *testing.T) {
	page := 2
	doc := DocumentResult{
		Results: []ClauseResult{{
			ClauseIndex: 4,
			Text:        "Supplier shall indemnify Buyer.",
			Risk:        &RiskDetail{RiskLevel: TextLevel("MEDIUM"), Issue: "broad indemnity"},
			Page:        &page,
			BBox:        []float64{1, 2, 3, 4},
		}},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var back DocumentResult
	require.NoError(t, json.Unmarshal(data, &back))
	if diff := cmp.Diff(doc.Results[0].EffectiveBlocks(), back.Results[0].EffectiveBlocks()); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "MEDIUM", back.Results[0].EffectiveRisk().RiskLevel.Text())
	assert.Equal(t, "broad indemnity", back.Results[0].EffectiveRisk().Issue)
}

func TestEffectiveRisk_NestedOverridesFlattened(t *testing.T) {
	c := ClauseResult{
		RiskLevel:   TextLevel("LOW"),
		Explanation: "flat",
		Risk:        &RiskDetail{RiskLevel: TextLevel("HIGH")},
	}
	r := c.EffectiveRisk()
	assert.Equal(t, "HIGH", r.RiskLevel.Text())
	assert.Equal(t, "flat", r.Explanation)
}
