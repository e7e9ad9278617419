// Package contract defines the wire-level data model exchanged with the
// clause analysis backend and exposed by the dashboard API.
//
// Backend responses are decoded leniently: a missing or mistyped field leaves
// the zero value in place instead of failing the whole payload.
package contract

import (
	"encoding/json"
	"strconv"
	"strings"
)

// RiskLevel is the normalised categorical risk of a clause.
type RiskLevel string

const (
	RiskHigh    RiskLevel = "HIGH"
	RiskMedium  RiskLevel = "MEDIUM"
	RiskLow     RiskLevel = "LOW"
	RiskUnknown RiskLevel = "UNKNOWN"
)

// ParseRiskLevel maps a label case-insensitively onto the known levels.
// Anything unrecognised, including stringified numeric classes, is UNKNOWN.
func ParseRiskLevel(s string) RiskLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGH":
		return RiskHigh
	case "MEDIUM":
		return RiskMedium
	case "LOW":
		return RiskLow
	default:
		return RiskUnknown
	}
}

// Lower returns the lowercase form used by filters and palettes.
func (l RiskLevel) Lower() string {
	return strings.ToLower(string(l))
}

// LevelValue holds a risk_level that the backend sends either as a string
// ("HIGH") or as a numeric class (0, 1, 2).
type LevelValue struct {
	text    string
	num     float64
	numeric bool
}

// TextLevel returns a string-valued risk level.
func TextLevel(s string) *LevelValue {
	return &LevelValue{text: s}
}

// NumericLevel returns a numeric risk class.
func NumericLevel(n float64) *LevelValue {
	return &LevelValue{num: n, numeric: true}
}

func (v *LevelValue) IsNumeric() bool { return v != nil && v.numeric }

func (v *LevelValue) Text() string {
	if v == nil || v.numeric {
		return ""
	}
	return v.text
}

func (v *LevelValue) Number() float64 {
	if v == nil || !v.numeric {
		return 0
	}
	return v.num
}

// String renders the value the way it would appear on screen.
func (v *LevelValue) String() string {
	if v == nil {
		return ""
	}
	if v.numeric {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.text
}

func (v LevelValue) MarshalJSON() ([]byte, error) {
	if v.numeric {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.text)
}

// UnmarshalJSON accepts strings and numbers. Other JSON types decode to an
// empty string level without error.
func (v *LevelValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = LevelValue{}
	switch t := raw.(type) {
	case string:
		v.text = t
	case float64:
		v.num, v.numeric = t, true
	}
	return nil
}

// Block locates part of a clause on a PDF page. Page is zero-based and BBox is
// [x0, y0, x1, y1] in PDF points with a top-left origin.
type Block struct {
	Page int       `json:"page"`
	BBox []float64 `json:"bbox"`
}

// Valid reports whether the block carries a complete bounding box.
func (b Block) Valid() bool {
	return b.Page >= 0 && len(b.BBox) >= 4
}

// RiskDetail is the nested risk object of a document clause.
type RiskDetail struct {
	RiskLevel        *LevelValue     `json:"risk_level,omitempty"`
	RiskLabel        string          `json:"risk_label,omitempty"`
	Issue            string          `json:"issue,omitempty"`
	Explanation      string          `json:"explanation,omitempty"`
	SuggestedRewrite string          `json:"suggested_rewrite,omitempty"`
	SourceClauses    json.RawMessage `json:"source_clauses,omitempty"`
}

// ClauseResult is one analysed clause of a document. Risk fields arrive either
// nested under Risk or flattened onto the clause itself.
type ClauseResult struct {
	ClauseIndex      int         `json:"clause_index"`
	ClauseID         string      `json:"clause_id,omitempty"`
	Heading          string      `json:"heading,omitempty"`
	Text             string      `json:"text"`
	Risk             *RiskDetail `json:"risk,omitempty"`
	RiskLevel        *LevelValue `json:"risk_level,omitempty"`
	RiskLabel        string      `json:"risk_label,omitempty"`
	Issue            string      `json:"issue,omitempty"`
	Explanation      string      `json:"explanation,omitempty"`
	SuggestedRewrite string      `json:"suggested_rewrite,omitempty"`
	Blocks           []Block     `json:"blocks,omitempty"`
	Page             *int        `json:"page,omitempty"`
	BBox             []float64   `json:"bbox,omitempty"`
}

// EffectiveRisk merges the nested risk object over the flattened fields.
func (c ClauseResult) EffectiveRisk() RiskDetail {
	d := RiskDetail{
		RiskLevel:        c.RiskLevel,
		RiskLabel:        c.RiskLabel,
		Issue:            c.Issue,
		Explanation:      c.Explanation,
		SuggestedRewrite: c.SuggestedRewrite,
	}
	if c.Risk == nil {
		return d
	}
	if c.Risk.RiskLevel != nil {
		d.RiskLevel = c.Risk.RiskLevel
	}
	if c.Risk.RiskLabel != "" {
		d.RiskLabel = c.Risk.RiskLabel
	}
	if c.Risk.Issue != "" {
		d.Issue = c.Risk.Issue
	}
	if c.Risk.Explanation != "" {
		d.Explanation = c.Risk.Explanation
	}
	if c.Risk.SuggestedRewrite != "" {
		d.SuggestedRewrite = c.Risk.SuggestedRewrite
	}
	d.SourceClauses = c.Risk.SourceClauses
	return d
}

// EffectiveBlocks returns Blocks, or the top-level page/bbox pair as a single
// block when the backend sent no block list.
func (c ClauseResult) EffectiveBlocks() []Block {
	if len(c.Blocks) > 0 {
		return c.Blocks
	}
	if c.Page != nil && len(c.BBox) >= 4 {
		return []Block{{Page: *c.Page, BBox: c.BBox}}
	}
	return nil
}

func (c *ClauseResult) UnmarshalJSON(data []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*c = clauseFromMap(m, 0)
	return nil
}

// DocumentResult is the backend's analysis of a whole contract. It is replaced
// wholesale on every analysis.
type DocumentResult struct {
	TotalClauses int                    `json:"total_clauses,omitempty"`
	Results      []ClauseResult         `json:"results"`
	Graph        map[string]interface{} `json:"graph,omitempty"`
}

// UnmarshalJSON accepts "results" or the older "clauses" key. Clauses without
// an explicit clause_index take their position in the list.
func (d *DocumentResult) UnmarshalJSON(data []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*d = DocumentResult{}
	if n, ok := asNumber(m["total_clauses"]); ok {
		d.TotalClauses = int(n)
	}
	if g, ok := m["graph"].(map[string]interface{}); ok {
		d.Graph = g
	}
	list, ok := m["results"].([]interface{})
	if !ok {
		list, _ = m["clauses"].([]interface{})
	}
	d.Results = make([]ClauseResult, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		d.Results = append(d.Results, clauseFromMap(obj, i))
	}
	return nil
}

// AuditEntry is one record of the backend's audit log.
type AuditEntry struct {
	ActionType   string          `json:"action_type"`
	Timestamp    string          `json:"timestamp"`
	ClauseText   string          `json:"clause_text,omitempty"`
	DocumentName string          `json:"document_name,omitempty"`
	Result       json.RawMessage `json:"result,omitempty"`
}

// AuditLog is the body of GET /audit_log.
type AuditLog struct {
	Logs []AuditEntry `json:"logs"`
}

// Audit action types emitted by the backend.
const (
	ActionClauseAnalysis   = "clause_analysis"
	ActionDocumentAnalysis = "document_analysis"
	ActionGraphGeneration  = "graph_generation"
)
