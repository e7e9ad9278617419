package cli

import (
	"github.com/spf13/cobra"

	"github.com/turtacn/ClauseLens/internal/application/export"
)

type exportOptions struct {
	source resultSource
	format string
	output string
}

// NewExportCmd writes clause results as CSV or JSON.
func NewExportCmd() *cobra.Command {
	opts := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export [contract.pdf]",
		Short: "Export clause results as CSV or JSON",
		Example: `  clauselens export msa.pdf --format csv
  clauselens export --results msa.json --format json -O -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args, opts)
		},
	}
	opts.source.addFlags(cmd)
	cmd.Flags().StringVar(&opts.format, "format", string(export.FormatCSV), "export format: csv or json")
	cmd.Flags().StringVarP(&opts.output, "out", "O", "", "output file, or - for stdout (default: contract_analysis.<format>)")
	return cmd
}

func runExport(cmd *cobra.Command, args []string, opts *exportOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	doc, err := opts.source.load(cmd, cliCtx, args)
	if err != nil {
		return err
	}
	data, err := export.Document(doc, format)
	if err != nil {
		return err
	}

	out := opts.output
	if out == "" {
		out = format.Filename()
	}
	if err := writeOutput(cmd, out, data); err != nil {
		return err
	}
	if out == "-" {
		return nil
	}
	return PrintResult(cmd, &FileWritten{Path: out, Bytes: len(data), Clauses: len(doc.Results)})
}
