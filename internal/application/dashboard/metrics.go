// Package dashboard composes document results into the views shown by the
// dashboard: headline metrics, chart series, the clause table and the audit
// log. Everything here is derived on request and never stored.
package dashboard

import (
	"strings"

	"github.com/turtacn/ClauseLens/internal/domain/clause"
	"github.com/turtacn/ClauseLens/pkg/errors"
	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

var ErrNoDocument = errors.New(errors.ErrCodeDocumentNotLoaded, "Analyze a document to see contract risk metrics")

var levelColors = map[string]string{
	"high":   "#ef4444",
	"medium": "#f59e0b",
	"low":    "#10b981",
}

var categoryColors = map[clause.Category]string{
	clause.CategoryPayment:              "#3b82f6",
	clause.CategoryTermination:          "#ef4444",
	clause.CategoryLiability:            "#f59e0b",
	clause.CategoryConfidentiality:      "#8b5cf6",
	clause.CategoryIntellectualProperty: "#10b981",
}

const defaultCategoryColor = "#6b7280"

// Slice is one segment of the risk distribution chart.
type Slice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// Bar is one bar of the category chart.
type Bar struct {
	Category clause.Category `json:"category"`
	Name     string          `json:"name"`
	Count    int             `json:"count"`
	Color    string          `json:"color"`
}

// CategorySummary is a category with its clause counts.
type CategorySummary struct {
	clause.CategoryInfo
	clause.CategoryStat
}

// Metrics is the headline view of an analysed document.
type Metrics struct {
	TotalClauses  int                `json:"total_clauses"`
	HighRisk      int                `json:"high_risk"`
	MediumRisk    int                `json:"medium_risk"`
	LowRisk       int                `json:"low_risk"`
	HighPercent   float64            `json:"high_percent"`
	MediumPercent float64            `json:"medium_percent"`
	LowPercent    float64            `json:"low_percent"`
	OverallScore  int                `json:"overall_score"`
	OverallLevel  contract.RiskLevel `json:"overall_level"`
	OverallLabel  string             `json:"overall_label"`
	Palette       clause.Palette     `json:"palette"`
	Sensitivity   clause.Profile     `json:"sensitivity"`
	Categories    []CategorySummary  `json:"categories"`
	Distribution  []Slice            `json:"distribution"`
	CategoryBars  []Bar              `json:"category_bars"`
	Advisory      string             `json:"advisory"`
}

// levelOf is the lowercased label of a clause, or "" without risk data.
func levelOf(c contract.ClauseResult) string {
	l := clause.ClauseLabel(c)
	if l == clause.Unknown {
		return ""
	}
	return strings.ToLower(l)
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// Compute builds the metrics of a document under a sensitivity profile.
// Unknown profile names fall back to balanced.
func Compute(doc *contract.DocumentResult, sensitivity string) (*Metrics, error) {
	if doc == nil {
		return nil, ErrNoDocument
	}
	clauses := doc.Results

	m := &Metrics{
		TotalClauses: len(clauses),
		Sensitivity:  clause.ProfileOrDefault(sensitivity),
		Advisory:     clause.Advisory,
	}

	chart := map[string]int{}
	for _, c := range clauses {
		lvl := levelOf(c)
		switch lvl {
		case "high":
			m.HighRisk++
		case "medium":
			m.MediumRisk++
		case "low":
			m.LowRisk++
		}
		if lvl == "" {
			lvl = "low"
		}
		chart[lvl]++
	}
	m.HighPercent = percent(m.HighRisk, m.TotalClauses)
	m.MediumPercent = percent(m.MediumRisk, m.TotalClauses)
	m.LowPercent = percent(m.LowRisk, m.TotalClauses)

	m.OverallScore = clause.OverallScore(clauses)
	m.OverallLevel = clause.OverallLevel(m.OverallScore)
	m.OverallLabel = string(m.OverallLevel) + " RISK"
	m.Palette = clause.RiskColor(m.OverallScore)

	m.Distribution = []Slice{}
	for _, s := range []struct{ key, name string }{
		{"high", "High Risk"}, {"medium", "Medium Risk"}, {"low", "Low Risk"},
	} {
		if n := chart[s.key]; n > 0 {
			m.Distribution = append(m.Distribution, Slice{Name: s.name, Value: n, Color: levelColors[s.key]})
		}
	}

	m.CategoryBars = categoryBars(clauses)

	stats := clause.CategoryStats(clauses)
	m.Categories = []CategorySummary{}
	for _, cat := range clause.AllCategories() {
		if st, ok := stats[cat]; ok {
			m.Categories = append(m.Categories, CategorySummary{CategoryInfo: clause.Info(cat), CategoryStat: st})
		}
	}
	return m, nil
}

// categoryBars counts clauses per category in order of first appearance.
func categoryBars(clauses []contract.ClauseResult) []Bar {
	bars := []Bar{}
	index := map[clause.Category]int{}
	for _, c := range clauses {
		cat := clause.Classify(c.Text)
		if i, ok := index[cat]; ok {
			bars[i].Count++
			continue
		}
		color, ok := categoryColors[cat]
		if !ok {
			color = defaultCategoryColor
		}
		index[cat] = len(bars)
		bars = append(bars, Bar{Category: cat, Name: clause.Info(cat).Label, Count: 1, Color: color})
	}
	return bars
}
