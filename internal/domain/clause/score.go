package clause

import (
	"math"
	"strings"

	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

// Advisory accompanies every score shown to a user.
const Advisory = "Risk scores are a presentation heuristic derived from the backend's labels and explanations. They are not a legal risk assessment."

type keywordAdjustment struct {
	keyword string
	delta   int
}

// severityTable: only the first matching entry applies.
var severityTable = []keywordAdjustment{
	{"critical", 20},
	{"severe", 15},
	{"significant", 10},
	{"substantial", 10},
	{"major", 8},
	{"moderate", 5},
	{"minor", -5},
	{"minimal", -10},
}

// indicatorTable: every matching entry applies.
var indicatorTable = []keywordAdjustment{
	{"unilateral", 5},
	{"no notice", 5},
	{"unlimited", 8},
	{"vague", 3},
	{"missing protection", 5},
}

func baseScore(riskLevel string) int {
	if riskLevel == "" {
		riskLevel = "low"
	}
	switch strings.ToLower(riskLevel) {
	case "high":
		return 75
	case "medium":
		return 50
	case "low":
		return 25
	default:
		return 0
	}
}

// Score computes the 0..100 heuristic score of a clause. An empty riskLevel
// is treated as low; any other unrecognised level starts from 0. The clause
// text does not influence the score.
func Score(text, riskLevel, explanation string) int {
	score := baseScore(riskLevel)
	expl := foldText(explanation)

	for _, adj := range severityTable {
		if strings.Contains(expl, adj.keyword) {
			score += adj.delta
			break
		}
	}
	for _, adj := range indicatorTable {
		if strings.Contains(expl, adj.keyword) {
			score += adj.delta
		}
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ScoreClause scores a document clause from its effective risk fields.
func ScoreClause(c contract.ClauseResult) int {
	r := c.EffectiveRisk()
	return Score(c.Text, clauseLevelText(c), r.Explanation)
}

// OverallScore is the rounded mean of the clause scores, or 0 for none.
func OverallScore(clauses []contract.ClauseResult) int {
	if len(clauses) == 0 {
		return 0
	}
	total := 0
	for _, c := range clauses {
		total += ScoreClause(c)
	}
	return int(math.Round(float64(total) / float64(len(clauses))))
}

// OverallLevel bands a document score for the dashboard headline.
func OverallLevel(score int) contract.RiskLevel {
	switch {
	case score >= 70:
		return contract.RiskHigh
	case score >= 40:
		return contract.RiskMedium
	default:
		return contract.RiskLow
	}
}

// Palette is the colour set used to render a score.
type Palette struct {
	Background string `json:"bg"`
	Border     string `json:"border"`
	Text       string `json:"text"`
	Badge      string `json:"badge"`
}

// RiskColor returns the palette for a score.
func RiskColor(score int) Palette {
	switch {
	case score >= 70:
		return Palette{Background: "#fef2f2", Border: "#fecaca", Text: "#991b1b", Badge: "#ef4444"}
	case score >= 40:
		return Palette{Background: "#fffbeb", Border: "#fde68a", Text: "#92400e", Badge: "#f59e0b"}
	default:
		return Palette{Background: "#f0fdf4", Border: "#bbf7d0", Text: "#166534", Badge: "#10b981"}
	}
}

// Intensity maps a score to a heatmap opacity in [0,1].
func Intensity(score int) float64 {
	return math.Min(1, float64(score)/100)
}
