package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/ClauseLens/internal/application/analysis"
	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseLens/internal/infrastructure/storage/minio"
	"github.com/turtacn/ClauseLens/pkg/errors"
	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

// FileWritten reports an artifact saved to disk.
type FileWritten struct {
	Path    string `json:"path"`
	Bytes   int    `json:"bytes"`
	Clauses int    `json:"clauses"`
}

func (f *FileWritten) String() string {
	return fmt.Sprintf("wrote %s (%d bytes, %d clauses)", f.Path, f.Bytes, f.Clauses)
}

func (f *FileWritten) TableHeaders() []string { return []string{"PATH", "BYTES", "CLAUSES"} }

func (f *FileWritten) TableRows() [][]string {
	return [][]string{{f.Path, strconv.Itoa(f.Bytes), strconv.Itoa(f.Clauses)}}
}

// resultSource names where clause results come from: a PDF to analyze, or a
// JSON file saved from an earlier run.
type resultSource struct {
	results string
}

func (s *resultSource) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.results, "results", "", "read analysis results from a JSON file instead of analyzing a PDF")
}

func (s *resultSource) load(cmd *cobra.Command, cliCtx *CLIContext, args []string) (*contract.DocumentResult, error) {
	switch {
	case s.results != "" && len(args) > 0:
		return nil, errors.New(errors.ErrCodeValidation, "pass either a PDF or --results, not both")
	case s.results != "":
		return readResultsFile(s.results)
	case len(args) == 1:
		return analyzePDF(cmd, cliCtx, args[0])
	default:
		return nil, errors.New(errors.ErrCodeValidation, "a PDF path or --results is required")
	}
}

// readResultsFile accepts a document result object ("results" or "clauses")
// or a bare array of clause results.
func readResultsFile(path string) (*contract.DocumentResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "failed to read results file")
	}
	trimmed := bytes.TrimSpace(data)
	doc := &contract.DocumentResult{}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &doc.Results); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeValidation, "results file is not valid JSON")
		}
		for i := range doc.Results {
			if doc.Results[i].ClauseIndex == 0 {
				doc.Results[i].ClauseIndex = i
			}
		}
		return doc, nil
	}
	if err := json.Unmarshal(trimmed, doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "results file is not valid JSON")
	}
	return doc, nil
}

// writeOutput saves data to path, or streams it to stdout for "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to write output file")
	}
	return nil
}

type reportOptions struct {
	source resultSource
	output string
}

// NewReportCmd generates the backend's PDF risk report.
func NewReportCmd() *cobra.Command {
	opts := &reportOptions{}
	cmd := &cobra.Command{
		Use:   "report [contract.pdf]",
		Short: "Generate the PDF risk report for a contract",
		Example: `  clauselens report msa.pdf
  clauselens report --results msa.json -O msa-report.pdf`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, args, opts)
		},
	}
	opts.source.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.output, "out", "O", minio.ReportFilename, "output file, or - for stdout")
	return cmd
}

func runReport(cmd *cobra.Command, args []string, opts *reportOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	doc, err := opts.source.load(cmd, cliCtx, args)
	if err != nil {
		return err
	}
	if len(doc.Results) == 0 {
		return errors.New(errors.ErrCodeExportNoData, analysis.MsgNoDocument)
	}
	backend, err := cliCtx.requireBackend()
	if err != nil {
		return err
	}
	ctx, cancel := cliCtx.withTimeout(cmd.Context())
	defer cancel()

	data, err := backend.GenerateReport(ctx, doc.Results)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeReportFailed, analysis.MsgReportFailed)
	}
	if len(data) == 0 {
		return errors.New(errors.ErrCodeReportFailed, analysis.MsgEmptyReport)
	}
	cliCtx.Logger.Debug("report generated", logging.Int("bytes", len(data)), logging.Int("clauses", len(doc.Results)))

	if err := writeOutput(cmd, opts.output, data); err != nil {
		return err
	}
	if opts.output == "-" {
		return nil
	}
	return PrintResult(cmd, &FileWritten{Path: opts.output, Bytes: len(data), Clauses: len(doc.Results)})
}

