package clause

import (
	"regexp"
	"strings"

	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

// NoExplanation is shown when the backend sent no explanation text.
const NoExplanation = "No explanation available"

type termReplacement struct {
	pattern *regexp.Regexp
	plain   string
}

var jargon = []termReplacement{
	{regexp.MustCompile(`(?i)unilateral`), "one-sided"},
	{regexp.MustCompile(`(?i)indemnification`), "responsibility for damages"},
	{regexp.MustCompile(`(?i)jurisdiction`), "legal authority"},
	{regexp.MustCompile(`(?i)arbitration`), "dispute resolution"},
	{regexp.MustCompile(`(?i)proprietary`), "private/confidential"},
}

// phraseRule adds finding when any trigger occurs in the lowercased text.
type phraseRule struct {
	triggers []string
	finding  string
}

func (r phraseRule) matches(text string) bool {
	for _, t := range r.triggers {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

var deviationRules = []phraseRule{
	{[]string{"no notice", "without notice"}, "Missing notice period requirement"},
	{[]string{"unilateral", "one-sided"}, "Unilateral/one-sided terms"},
	{[]string{"unlimited", "no limit"}, "Unlimited liability or scope"},
	{[]string{"vague", "unclear"}, "Vague or ambiguous language"},
	{[]string{"no compensation", "without compensation"}, "No compensation provision"},
	{[]string{"no appeal", "final decision"}, "No appeal or review process"},
}

var missingMarkers = []string{"missing", "lacks", "no protection"}

var protectionRules = []phraseRule{
	{[]string{"notice"}, "Notice period clause"},
	{[]string{"compensation"}, "Compensation or remedy clause"},
	{[]string{"appeal", "review"}, "Appeal or review mechanism"},
	{[]string{"mutual"}, "Mutual agreement requirement"},
	{[]string{"limitation"}, "Liability limitation clause"},
}

var riskFactorRules = []phraseRule{
	{[]string{"one-sided", "unilateral"}, "One-sided terms favoring one party"},
	{[]string{"vague", "unclear", "ambiguous"}, "Vague or ambiguous language"},
	{[]string{"broad", "wide"}, "Overly broad scope"},
	{[]string{"no limit", "unlimited"}, "Unlimited liability or obligations"},
	{[]string{"discretion"}, "Excessive discretionary power"},
	{[]string{"waive", "waiver"}, "Waiver of important rights"},
}

// HighRiskFactor is appended to the risk factors of every high-risk clause.
const HighRiskFactor = "Classified as high risk by analysis"

func collect(rules []phraseRule, text string) []string {
	out := []string{}
	for _, r := range rules {
		if r.matches(text) {
			out = append(out, r.finding)
		}
	}
	return out
}

// SimplifyExplanation replaces legal jargon with plain terms.
func SimplifyExplanation(explanation string) string {
	if explanation == "" {
		return NoExplanation
	}
	simplified := explanation
	for _, r := range jargon {
		simplified = r.pattern.ReplaceAllLiteralString(simplified, r.plain)
	}
	return simplified
}

// DetectedDeviations lists the deviation phrases triggered by explanation.
func DetectedDeviations(explanation string) []string {
	if explanation == "" {
		return []string{}
	}
	return collect(deviationRules, foldText(explanation))
}

// MissingProtections lists absent protections. Nothing is reported unless the
// explanation says something is missing or lacking.
func MissingProtections(explanation string) []string {
	if explanation == "" {
		return []string{}
	}
	text := foldText(explanation)
	marked := false
	for _, m := range missingMarkers {
		if strings.Contains(text, m) {
			marked = true
			break
		}
	}
	if !marked {
		return []string{}
	}
	return collect(protectionRules, text)
}

// RiskFactors lists the broader risk indicators in explanation, plus
// HighRiskFactor when riskLevel is high.
func RiskFactors(explanation, riskLevel string) []string {
	if explanation == "" {
		return []string{}
	}
	factors := collect(riskFactorRules, foldText(explanation))
	if strings.EqualFold(riskLevel, "high") {
		factors = append(factors, HighRiskFactor)
	}
	return factors
}

// Explainability is the structured reading of a backend explanation.
type Explainability struct {
	SimplifiedExplanation string   `json:"simplified_explanation"`
	DetectedDeviations    []string `json:"detected_deviations"`
	MissingProtections    []string `json:"missing_protections"`
	RiskFactors           []string `json:"risk_factors"`
	OriginalExplanation   string   `json:"original_explanation"`
	SuggestedRewrite      string   `json:"suggested_rewrite,omitempty"`
}

// Explain parses a risk record. The explanation falls back to the issue text
// and the level falls back to low.
func Explain(risk contract.RiskDetail) Explainability {
	explanation := risk.Explanation
	if explanation == "" {
		explanation = risk.Issue
	}
	level := ResolveLabel(risk.RiskLabel, risk.RiskLevel)
	if level == Unknown {
		level = "low"
	}
	return Explainability{
		SimplifiedExplanation: SimplifyExplanation(explanation),
		DetectedDeviations:    DetectedDeviations(explanation),
		MissingProtections:    MissingProtections(explanation),
		RiskFactors:           RiskFactors(explanation, level),
		OriginalExplanation:   explanation,
		SuggestedRewrite:      risk.SuggestedRewrite,
	}
}

// ExplainPrediction parses a single-clause prediction. Hybrid wrappers are
// read through their LLM half, which carries the prose.
func ExplainPrediction(p *contract.Prediction) Explainability {
	if p == nil {
		return Explain(contract.RiskDetail{})
	}
	src := p
	if p.Kind == contract.KindHybrid && p.Explanation == "" && p.Issue == "" && p.LLM != nil {
		src = p.LLM
	}
	return Explain(contract.RiskDetail{
		RiskLabel:        Label(p),
		Issue:            src.Issue,
		Explanation:      src.Explanation,
		SuggestedRewrite: src.SuggestedRewrite,
	})
}

// Section is one titled block of an explainability panel. Either Content or
// Items is set.
type Section struct {
	Title   string   `json:"title"`
	Icon    string   `json:"icon"`
	Content string   `json:"content,omitempty"`
	Items   []string `json:"items,omitempty"`
}

// Sections lays an explainability record out for display, skipping empty
// parts.
func Sections(e Explainability) []Section {
	sections := []Section{}
	if e.SimplifiedExplanation != "" {
		sections = append(sections, Section{Title: "Explanation", Icon: "💡", Content: e.SimplifiedExplanation})
	}
	if len(e.DetectedDeviations) > 0 {
		sections = append(sections, Section{Title: "Detected Issues", Icon: "⚠️", Items: e.DetectedDeviations})
	}
	if len(e.MissingProtections) > 0 {
		sections = append(sections, Section{Title: "Missing Protections", Icon: "🛡️", Items: e.MissingProtections})
	}
	if len(e.RiskFactors) > 0 {
		sections = append(sections, Section{Title: "Risk Factors", Icon: "🔍", Items: e.RiskFactors})
	}
	if e.SuggestedRewrite != "" {
		sections = append(sections, Section{Title: "Suggested Safer Alternative", Icon: "✅", Content: e.SuggestedRewrite})
	}
	return sections
}
