package contract

import (
	"encoding/json"
	"strconv"
)

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asNumber(v interface{}) (float64, bool) {
	n, ok := v.(float64)
	return n, ok
}

// asID stringifies identifiers that may arrive as strings or numbers.
func asID(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func asLevel(v interface{}) *LevelValue {
	switch t := v.(type) {
	case string:
		return TextLevel(t)
	case float64:
		return NumericLevel(t)
	default:
		return nil
	}
}

func asFloats(v interface{}) []float64 {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(list))
	for _, item := range list {
		if n, ok := item.(float64); ok {
			out = append(out, n)
		}
	}
	return out
}

func asRaw(v interface{}) json.RawMessage {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

func riskFromMap(m map[string]interface{}) *RiskDetail {
	return &RiskDetail{
		RiskLevel:        asLevel(m["risk_level"]),
		RiskLabel:        asString(m["risk_label"]),
		Issue:            asString(m["issue"]),
		Explanation:      asString(m["explanation"]),
		SuggestedRewrite: asString(m["suggested_rewrite"]),
		SourceClauses:    asRaw(m["source_clauses"]),
	}
}

func blocksFromList(v interface{}) []Block {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	blocks := make([]Block, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		page, ok := asNumber(obj["page"])
		if !ok {
			page = -1
		}
		blocks = append(blocks, Block{Page: int(page), BBox: asFloats(obj["bbox"])})
	}
	return blocks
}

func clauseFromMap(m map[string]interface{}, position int) ClauseResult {
	c := ClauseResult{
		ClauseIndex:      position,
		ClauseID:         asID(m["clause_id"]),
		Heading:          asString(m["heading"]),
		Text:             asString(m["text"]),
		RiskLevel:        asLevel(m["risk_level"]),
		RiskLabel:        asString(m["risk_label"]),
		Issue:            asString(m["issue"]),
		Explanation:      asString(m["explanation"]),
		SuggestedRewrite: asString(m["suggested_rewrite"]),
		Blocks:           blocksFromList(m["blocks"]),
		BBox:             asFloats(m["bbox"]),
	}
	if c.Text == "" {
		c.Text = asString(m["clause_text"])
	}
	if n, ok := asNumber(m["clause_index"]); ok {
		c.ClauseIndex = int(n)
	}
	if r, ok := m["risk"].(map[string]interface{}); ok {
		c.Risk = riskFromMap(r)
	}
	if n, ok := asNumber(m["page"]); ok {
		page := int(n)
		c.Page = &page
	}
	return c
}
