package dashboard

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

// AuditFilters are the action filters offered for the audit log.
var AuditFilters = []string{RiskAll, contract.ActionClauseAnalysis, contract.ActionDocumentAnalysis}

const excerptRunes = 150

// ActionColors styles an audit entry.
type ActionColors struct {
	Background string `json:"bg"`
	Border     string `json:"border"`
	Text       string `json:"text"`
}

func colorsFor(action string) ActionColors {
	switch action {
	case contract.ActionClauseAnalysis:
		return ActionColors{"#eff6ff", "#3b82f6", "#1e40af"}
	case contract.ActionDocumentAnalysis:
		return ActionColors{"#f0fdf4", "#10b981", "#166534"}
	case contract.ActionGraphGeneration:
		return ActionColors{"#faf5ff", "#8b5cf6", "#6b21a8"}
	default:
		return ActionColors{"#f9fafb", "#6b7280", "#374151"}
	}
}

// AuditView is an audit entry prepared for display.
type AuditView struct {
	ActionType   string       `json:"action_type"`
	Title        string       `json:"title"`
	Timestamp    string       `json:"timestamp"`
	Excerpt      string       `json:"excerpt,omitempty"`
	Result       string       `json:"result,omitempty"`
	Confidence   *float64     `json:"confidence,omitempty"`
	DocumentName string       `json:"document_name,omitempty"`
	Colors       ActionColors `json:"colors"`
}

// FilterAudit keeps entries whose action matches. "all" or "" keeps
// everything.
func FilterAudit(entries []contract.AuditEntry, action string) []contract.AuditEntry {
	out := make([]contract.AuditEntry, 0, len(entries))
	for _, e := range entries {
		if action == "" || action == RiskAll || e.ActionType == action {
			out = append(out, e)
		}
	}
	return out
}

// NewAuditView formats one entry. Clause text is cut to 150 characters and
// the result reads risk_level, then risk_label, then "N/A".
func NewAuditView(e contract.AuditEntry) AuditView {
	v := AuditView{
		ActionType:   e.ActionType,
		Title:        strings.Replace(e.ActionType, "_", " ", 1),
		Timestamp:    e.Timestamp,
		DocumentName: e.DocumentName,
		Colors:       colorsFor(e.ActionType),
	}
	if e.ClauseText != "" {
		v.Excerpt = e.ClauseText
		if utf8.RuneCountInString(e.ClauseText) > excerptRunes {
			v.Excerpt = string([]rune(e.ClauseText)[:excerptRunes]) + "..."
		}
	}
	if len(e.Result) > 0 {
		var res struct {
			RiskLevel  *contract.LevelValue `json:"risk_level"`
			RiskLabel  string               `json:"risk_label"`
			Confidence *float64             `json:"confidence"`
		}
		if err := json.Unmarshal(e.Result, &res); err == nil {
			switch {
			case res.RiskLevel.String() != "":
				v.Result = res.RiskLevel.String()
			case res.RiskLabel != "":
				v.Result = res.RiskLabel
			default:
				v.Result = "N/A"
			}
			if res.Confidence != nil && *res.Confidence != 0 {
				v.Confidence = res.Confidence
			}
		}
	}
	return v
}

// AuditViews filters and formats a log.
func AuditViews(log *contract.AuditLog, action string) []AuditView {
	if log == nil {
		return []AuditView{}
	}
	entries := FilterAudit(log.Logs, action)
	out := make([]AuditView, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewAuditView(e))
	}
	return out
}
