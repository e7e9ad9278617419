package contract

import (
	"encoding/json"
	"strings"
)

// PredictionKind discriminates the three response shapes of the clause
// endpoints.
type PredictionKind string

const (
	KindLLM    PredictionKind = "llm"
	KindGNN    PredictionKind = "gnn"
	KindHybrid PredictionKind = "hybrid"
)

// ParsePredictionKind accepts the mode names used by the dashboard.
func ParsePredictionKind(s string) (PredictionKind, bool) {
	switch PredictionKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindLLM:
		return KindLLM, true
	case KindGNN:
		return KindGNN, true
	case KindHybrid:
		return KindHybrid, true
	default:
		return "", false
	}
}

// DefaultSource is the source marker attached to a result that arrived
// without one.
func (k PredictionKind) DefaultSource() string {
	switch k {
	case KindGNN:
		return "GNN"
	case KindHybrid:
		return "HYBRID"
	default:
		return "LLM"
	}
}

// Source markers reported by the backend.
const (
	SourceLLM       = "LLM"
	SourceGNN       = "GNN"
	SourceHybrid    = "HYBRID"
	SourceHybridLLM = "HYBRID_LLM"
	SourceHybridGNN = "HYBRID_GNN"
)

// Prediction is a clause risk result. Kind says which of the three shapes
// was received:
//
//   - llm: risk_level string, issue, explanation, suggested_rewrite
//   - gnn: numeric risk_level, confidence, probabilities [low, medium, high]
//   - hybrid: wrapper carrying gnn_prediction and llm_prediction
type Prediction struct {
	Kind             PredictionKind `json:"kind"`
	Source           string         `json:"source,omitempty"`
	RiskLabel        string         `json:"risk_label,omitempty"`
	RiskLevel        *LevelValue    `json:"risk_level,omitempty"`
	Confidence       *float64       `json:"confidence,omitempty"`
	Probabilities    []float64      `json:"probabilities,omitempty"`
	Issue            string         `json:"issue,omitempty"`
	Explanation      string         `json:"explanation,omitempty"`
	SuggestedRewrite string         `json:"suggested_rewrite,omitempty"`
	UsedFallback     bool           `json:"used_fallback,omitempty"`
	FallbackReason   string         `json:"fallback_reason,omitempty"`
	Error            string         `json:"error,omitempty"`
	GNN              *Prediction    `json:"gnn_prediction,omitempty"`
	LLM              *Prediction    `json:"llm_prediction,omitempty"`
}

// DecodePrediction decodes a clause endpoint response. The kind is taken from
// the body when it is recognisable and from requested otherwise. Only a body
// that is not a JSON object is an error.
func DecodePrediction(data []byte, requested PredictionKind) (*Prediction, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return predictionFromMap(m, requested), nil
}

func (p *Prediction) UnmarshalJSON(data []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	requested, ok := ParsePredictionKind(asString(m["kind"]))
	if !ok {
		requested = KindLLM
	}
	*p = *predictionFromMap(m, requested)
	return nil
}

func predictionFromMap(m map[string]interface{}, requested PredictionKind) *Prediction {
	if m == nil {
		return &Prediction{Kind: requested}
	}
	p := &Prediction{
		Source:           asString(m["source"]),
		RiskLabel:        asString(m["risk_label"]),
		RiskLevel:        asLevel(m["risk_level"]),
		Probabilities:    asFloats(m["probabilities"]),
		Issue:            asString(m["issue"]),
		Explanation:      asString(m["explanation"]),
		SuggestedRewrite: asString(m["suggested_rewrite"]),
		FallbackReason:   asString(m["fallback_reason"]),
		Error:            asString(m["error"]),
	}
	if n, ok := asNumber(m["confidence"]); ok {
		p.Confidence = &n
	}
	if b, ok := m["used_fallback"].(bool); ok {
		p.UsedFallback = b
	}
	if g, ok := m["gnn_prediction"].(map[string]interface{}); ok {
		p.GNN = predictionFromMap(g, KindGNN)
	}
	if l, ok := m["llm_prediction"].(map[string]interface{}); ok {
		p.LLM = predictionFromMap(l, KindLLM)
	}
	p.Kind = resolveKind(p, requested)
	return p
}

func resolveKind(p *Prediction, requested PredictionKind) PredictionKind {
	switch {
	case p.GNN != nil || p.LLM != nil:
		return KindHybrid
	case strings.HasPrefix(p.Source, SourceHybrid):
		return KindHybrid
	case p.Source == SourceGNN:
		return KindGNN
	case p.Source == SourceLLM:
		return KindLLM
	case len(p.Probabilities) > 0:
		return KindGNN
	}
	if requested == "" {
		return KindLLM
	}
	return requested
}
