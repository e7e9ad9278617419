// Package clause holds the presentation-side analysis of clause results:
// label normalisation, keyword categorisation, heuristic scoring and
// explanation parsing. Nothing in this package talks to the backend and
// nothing here fails; malformed input degrades to defaults.
package clause

import (
	"math"
	"strings"

	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

// Unknown is the label of a result that carries no risk information.
const Unknown = string(contract.RiskUnknown)

var numericClasses = map[float64]string{
	0: string(contract.RiskLow),
	1: string(contract.RiskMedium),
	2: string(contract.RiskHigh),
}

// ResolveLabel applies the label precedence: risk_label, then a string
// risk_level, then a numeric class (0/1/2 mapped, anything else stringified),
// then UNKNOWN.
func ResolveLabel(label string, level *contract.LevelValue) string {
	if label != "" {
		return label
	}
	if level == nil {
		return Unknown
	}
	if !level.IsNumeric() {
		if t := level.Text(); t != "" {
			return t
		}
		return Unknown
	}
	if mapped, ok := numericClasses[level.Number()]; ok {
		return mapped
	}
	return level.String()
}

// Label returns the single display label of a prediction.
func Label(p *contract.Prediction) string {
	if p == nil {
		return Unknown
	}
	own := ResolveLabel(p.RiskLabel, p.RiskLevel)
	switch p.Kind {
	case contract.KindLLM, contract.KindGNN:
		return own
	case contract.KindHybrid:
		if own != Unknown {
			return own
		}
		if p.LLM != nil {
			if l := Label(p.LLM); l != Unknown {
				return l
			}
		}
		if p.GNN != nil {
			return Label(p.GNN)
		}
		return Unknown
	default:
		return own
	}
}

// Level is Label mapped onto the known risk levels.
func Level(p *contract.Prediction) contract.RiskLevel {
	return contract.ParseRiskLevel(Label(p))
}

// Confidence returns the model confidence in [0,1], or 0 when none was sent.
func Confidence(p *contract.Prediction) float64 {
	if p == nil {
		return 0
	}
	switch p.Kind {
	case contract.KindHybrid:
		if p.Confidence != nil {
			return clamp01(*p.Confidence)
		}
		if p.GNN != nil && p.GNN.Confidence != nil {
			return clamp01(*p.GNN.Confidence)
		}
		if p.LLM != nil && p.LLM.Confidence != nil {
			return clamp01(*p.LLM.Confidence)
		}
		return 0
	default:
		if p.Confidence != nil {
			return clamp01(*p.Confidence)
		}
		return 0
	}
}

// Probabilities returns the [low, medium, high] class probabilities, or nil
// when the result carries no well-formed triple.
func Probabilities(p *contract.Prediction) []float64 {
	if p == nil {
		return nil
	}
	if len(p.Probabilities) == 3 {
		return p.Probabilities
	}
	if p.Kind == contract.KindHybrid && p.GNN != nil && len(p.GNN.Probabilities) == 3 {
		return p.GNN.Probabilities
	}
	return nil
}

// ClauseLabel resolves the label of a document clause.
func ClauseLabel(c contract.ClauseResult) string {
	r := c.EffectiveRisk()
	return ResolveLabel(r.RiskLabel, r.RiskLevel)
}

// clauseLevelText is the lowercased risk level of a clause, or "" when the
// clause carries no risk information at all.
func clauseLevelText(c contract.ClauseResult) string {
	l := ClauseLabel(c)
	if l == Unknown {
		return ""
	}
	return strings.ToLower(l)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
