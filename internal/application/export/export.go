// Package export renders clause results as local CSV and JSON downloads.
// Neither format involves the backend; the PDF report does and lives in the
// analysis service.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/turtacn/ClauseLens/internal/domain/clause"
	"github.com/turtacn/ClauseLens/pkg/errors"
	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

// Format is a local export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

const (
	CSVFilename  = "contract_analysis.csv"
	JSONFilename = "contract_analysis.json"
)

var ErrNoData = errors.New(errors.ErrCodeExportNoData, "No data to export")

// ParseFormat accepts "csv" or "json" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", errors.Newf(errors.ErrCodeExportFormat, "unsupported export format %q", s)
}

func (f Format) Filename() string {
	if f == FormatCSV {
		return CSVFilename
	}
	return JSONFilename
}

func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

// Field is one named cell of a record.
type Field struct {
	Key   string
	Value interface{}
}

// Record is an ordered row. Order matters: the CSV header is taken from the
// first record's keys.
type Record []Field

func (r Record) lookup(key string) (interface{}, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// MarshalJSON keeps field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// CSV renders records with a header row from the first record's keys. Only
// string cells containing a comma or a double quote are quoted, with inner
// quotes doubled. Rows are separated by "\n". A missing key yields an empty
// cell.
func CSV(records []Record) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrNoData
	}
	headers := make([]string, len(records[0]))
	for i, f := range records[0] {
		headers[i] = f.Key
	}

	var buf bytes.Buffer
	buf.WriteString(strings.Join(headers, ","))
	for _, rec := range records {
		buf.WriteByte('\n')
		for i, h := range headers {
			if i > 0 {
				buf.WriteByte(',')
			}
			v, _ := rec.lookup(h)
			buf.WriteString(cell(v))
		}
	}
	return buf.Bytes(), nil
}

func cell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		if strings.ContainsAny(x, `,"`) {
			return `"` + strings.ReplaceAll(x, `"`, `""`) + `"`
		}
		return x
	default:
		return fmt.Sprint(x)
	}
}

// JSON renders v indented by two spaces.
func JSON(v interface{}) ([]byte, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode export")
	}
	return out, nil
}

// ClauseRecords flattens document clauses into the CSV export columns.
func ClauseRecords(clauses []contract.ClauseResult) []Record {
	out := make([]Record, 0, len(clauses))
	for _, c := range clauses {
		level := "unknown"
		if r := c.EffectiveRisk(); r.RiskLevel != nil && r.RiskLevel.String() != "" {
			level = r.RiskLevel.String()
		}
		out = append(out, Record{
			{Key: "Clause Index", Value: c.ClauseIndex},
			{Key: "Category", Value: clause.Info(clause.Classify(c.Text)).Label},
			{Key: "Risk Level", Value: level},
			{Key: "Risk Score", Value: clause.ScoreClause(c)},
			{Key: "Text", Value: c.Text},
		})
	}
	return out
}

// Document renders a document result in the given format. CSV exports the
// clause table; JSON exports the whole result as received.
func Document(doc *contract.DocumentResult, f Format) ([]byte, error) {
	if doc == nil {
		return nil, ErrNoData
	}
	switch f {
	case FormatCSV:
		return CSV(ClauseRecords(doc.Results))
	case FormatJSON:
		return JSON(doc)
	}
	return nil, errors.Newf(errors.ErrCodeExportFormat, "unsupported export format %q", f)
}
