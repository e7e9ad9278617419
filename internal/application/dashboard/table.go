package dashboard

import (
	"sort"
	"strings"

	"github.com/turtacn/ClauseLens/internal/domain/clause"
	"github.com/turtacn/ClauseLens/pkg/errors"
	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

// ClauseView is one row of the clause table with everything derived from it.
type ClauseView struct {
	Index            int                   `json:"clause_index"`
	ClauseID         string                `json:"clause_id,omitempty"`
	Heading          string                `json:"heading,omitempty"`
	Text             string                `json:"text"`
	Category         clause.CategoryInfo   `json:"category"`
	Label            string                `json:"label"`
	Level            contract.RiskLevel    `json:"level"`
	Score            int                   `json:"score"`
	Band             contract.RiskLevel    `json:"band"`
	Palette          clause.Palette        `json:"palette"`
	Intensity        float64               `json:"intensity"`
	Issue            string                `json:"issue,omitempty"`
	SuggestedRewrite string                `json:"suggested_rewrite,omitempty"`
	Explainability   clause.Explainability `json:"explainability"`
	Sections         []clause.Section      `json:"sections"`
	Blocks           []contract.Block      `json:"blocks,omitempty"`
}

// NewClauseView derives the table row of one clause. Band is the score under
// the sensitivity profile.
func NewClauseView(c contract.ClauseResult, sensitivity string) ClauseView {
	risk := c.EffectiveRisk()
	label := clause.ClauseLabel(c)
	score := clause.ScoreClause(c)
	e := clause.Explain(risk)
	return ClauseView{
		Index:            c.ClauseIndex,
		ClauseID:         c.ClauseID,
		Heading:          c.Heading,
		Text:             c.Text,
		Category:         clause.Info(clause.Classify(c.Text)),
		Label:            label,
		Level:            contract.ParseRiskLevel(label),
		Score:            score,
		Band:             clause.ApplyThreshold(score, sensitivity),
		Palette:          clause.RiskColor(score),
		Intensity:        clause.Intensity(score),
		Issue:            risk.Issue,
		SuggestedRewrite: risk.SuggestedRewrite,
		Explainability:   e,
		Sections:         clause.Sections(e),
		Blocks:           c.EffectiveBlocks(),
	}
}

// ClauseViews derives every row of a document, in document order.
func ClauseViews(doc *contract.DocumentResult, sensitivity string) []ClauseView {
	if doc == nil {
		return []ClauseView{}
	}
	out := make([]ClauseView, 0, len(doc.Results))
	for _, c := range doc.Results {
		out = append(out, NewClauseView(c, sensitivity))
	}
	return out
}

const (
	SortByRisk  = "risk"
	SortByIndex = "index"
	RiskAll     = "all"
)

// Query selects and orders clause table rows.
type Query struct {
	Search string `form:"q" json:"q"`
	Risk   string `form:"risk" json:"risk"`
	SortBy string `form:"sort" json:"sort"`
}

// Normalize lowercases the query and fills defaults: all risks, sorted by
// risk.
func (q Query) Normalize() (Query, error) {
	q.Risk = strings.ToLower(strings.TrimSpace(q.Risk))
	q.SortBy = strings.ToLower(strings.TrimSpace(q.SortBy))
	if q.Risk == "" {
		q.Risk = RiskAll
	}
	if q.SortBy == "" {
		q.SortBy = SortByRisk
	}
	switch q.Risk {
	case RiskAll, "high", "medium", "low", "unknown":
	default:
		return q, errors.Newf(errors.ErrCodeValidation, "unknown risk filter %q", q.Risk)
	}
	switch q.SortBy {
	case SortByRisk, SortByIndex:
	default:
		return q, errors.Newf(errors.ErrCodeValidation, "unknown sort key %q", q.SortBy)
	}
	return q, nil
}

var levelRank = map[contract.RiskLevel]int{
	contract.RiskHigh:    3,
	contract.RiskMedium:  2,
	contract.RiskLow:     1,
	contract.RiskUnknown: 0,
}

// Filter applies a normalised query: case-insensitive text search, a risk
// filter and a stable sort.
func Filter(rows []ClauseView, q Query) []ClauseView {
	needle := strings.ToLower(q.Search)
	out := make([]ClauseView, 0, len(rows))
	for _, r := range rows {
		if needle != "" && !strings.Contains(strings.ToLower(r.Text), needle) {
			continue
		}
		if q.Risk != "" && q.Risk != RiskAll && r.Level.Lower() != q.Risk {
			continue
		}
		out = append(out, r)
	}
	switch q.SortBy {
	case SortByIndex:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	case SortByRisk:
		sort.SliceStable(out, func(i, j int) bool { return levelRank[out[i].Level] > levelRank[out[j].Level] })
	}
	return out
}

// Group is the clauses of one category.
type Group struct {
	Category clause.CategoryInfo `json:"category"`
	Clauses  []ClauseView        `json:"clauses"`
}

// GroupByCategory partitions rows by category in table order, skipping empty
// categories. Rows keep their input order.
func GroupByCategory(rows []ClauseView) []Group {
	byID := map[clause.Category][]ClauseView{}
	for _, r := range rows {
		byID[r.Category.ID] = append(byID[r.Category.ID], r)
	}
	groups := []Group{}
	for _, cat := range clause.AllCategories() {
		if rs := byID[cat]; len(rs) > 0 {
			groups = append(groups, Group{Category: clause.Info(cat), Clauses: rs})
		}
	}
	return groups
}
