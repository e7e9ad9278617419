package clause

import "github.com/turtacn/ClauseLens/pkg/types/contract"

// CategoryStat counts the clauses of one category by risk level.
type CategoryStat struct {
	Count      int `json:"count"`
	HighRisk   int `json:"high_risk"`
	MediumRisk int `json:"medium_risk"`
	LowRisk    int `json:"low_risk"`
}

// CategoryStats tallies clauses per category. A clause that is neither high
// nor medium counts as low, including one without any risk information.
func CategoryStats(clauses []contract.ClauseResult) map[Category]CategoryStat {
	stats := make(map[Category]CategoryStat)
	for _, c := range clauses {
		cat := Classify(c.Text)
		s := stats[cat]
		s.Count++
		switch clauseLevelText(c) {
		case "high":
			s.HighRisk++
		case "medium":
			s.MediumRisk++
		default:
			s.LowRisk++
		}
		stats[cat] = s
	}
	return stats
}
