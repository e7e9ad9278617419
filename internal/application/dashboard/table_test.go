package dashboard

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ClauseLens/internal/domain/clause"
	"github.com/turtacn/ClauseLens/pkg/errors"
	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

func indexes(rows []ClauseView) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.Index
	}
	return out
}

func TestNewClauseView(t *testing.T) {
	v := NewClauseView(sampleDoc().Results[0], "conservative")

	assert.Equal(t, "HIGH", v.Label)
	assert.Equal(t, contract.RiskHigh, v.Level)
	assert.Equal(t, 85, v.Score)
	assert.Equal(t, contract.RiskHigh, v.Band)
	assert.Equal(t, 0.85, v.Intensity)
	assert.Equal(t, clause.CategoryTermination, v.Category.ID)
	assert.Contains(t, v.Explainability.DetectedDeviations, "Unilateral/one-sided terms")
	assert.NotEmpty(t, v.Sections)
	assert.Len(t, v.Blocks, 1)
}

func TestNewClauseView_BandFollowsSensitivity(t *testing.T) {
	c := contract.ClauseResult{Text: "x", RiskLevel: contract.TextLevel("MEDIUM"), Explanation: "moderate"}
	// score 55
	assert.Equal(t, contract.RiskMedium, NewClauseView(c, "conservative").Band)
	assert.Equal(t, contract.RiskMedium, NewClauseView(c, "balanced").Band)
	assert.Equal(t, contract.RiskMedium, NewClauseView(c, "aggressive").Band)

	c.Explanation = "significant"
	// score 60
	assert.Equal(t, contract.RiskHigh, NewClauseView(c, "conservative").Band)
	assert.Equal(t, contract.RiskMedium, NewClauseView(c, "balanced").Band)
}

func TestClauseViews_TopLevelBlock(t *testing.T) {
	rows := ClauseViews(sampleDoc(), "balanced")
	require.Len(t, rows, 4)
	assert.Equal(t, []contract.Block{{Page: 1, BBox: []float64{0, 0, 10, 10}}}, rows[2].Blocks)
	assert.Equal(t, "MEDIUM", rows[1].Label)
	assert.Equal(t, contract.RiskUnknown, rows[3].Level)

	assert.Empty(t, ClauseViews(nil, "balanced"))
}

func TestQueryNormalize(t *testing.T) {
	q, err := Query{Risk: " HIGH "}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, Query{Risk: "high", SortBy: SortByRisk}, q)

	q, err = Query{}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, RiskAll, q.Risk)

	_, err = Query{Risk: "critical"}.Normalize()
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
	_, err = Query{SortBy: "score"}.Normalize()
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestFilter(t *testing.T) {
	rows := ClauseViews(sampleDoc(), "balanced")

	tests := []struct {
		name  string
		query Query
		want  []int
	}{
		{"risk order, stable", Query{Risk: RiskAll, SortBy: SortByRisk}, []int{0, 1, 2, 3}},
		{"index order", Query{Risk: RiskAll, SortBy: SortByIndex}, []int{0, 1, 2, 3}},
		{"search case-insensitive", Query{Search: "FEES", Risk: RiskAll, SortBy: SortByRisk}, []int{1}},
		{"risk filter", Query{Risk: "low", SortBy: SortByRisk}, []int{2}},
		{"unknown filter", Query{Risk: "unknown", SortBy: SortByRisk}, []int{3}},
		{"no match", Query{Search: "zzz", Risk: RiskAll, SortBy: SortByRisk}, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, indexes(Filter(rows, tt.query))); diff != "" {
				t.Errorf("Filter() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilter_RiskSortReorders(t *testing.T) {
	rows := []ClauseView{
		{Index: 0, Level: contract.RiskLow},
		{Index: 1, Level: contract.RiskUnknown},
		{Index: 2, Level: contract.RiskHigh},
		{Index: 3, Level: contract.RiskLow},
		{Index: 4, Level: contract.RiskMedium},
	}
	got := indexes(Filter(rows, Query{Risk: RiskAll, SortBy: SortByRisk}))
	assert.Equal(t, []int{2, 4, 0, 3, 1}, got)
}

func TestGroupByCategory(t *testing.T) {
	rows := ClauseViews(sampleDoc(), "balanced")
	rows = append(rows, NewClauseView(contract.ClauseResult{ClauseIndex: 9, Text: "The term ends on expiry."}, "balanced"))

	groups := GroupByCategory(rows)
	require.Len(t, groups, 4)
	assert.Equal(t, clause.CategoryTermination, groups[0].Category.ID)
	assert.Equal(t, []int{0, 9}, indexes(groups[0].Clauses))
	assert.Equal(t, clause.CategoryGeneral, groups[3].Category.ID)
}
