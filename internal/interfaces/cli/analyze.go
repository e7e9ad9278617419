package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/ClauseLens/internal/application/dashboard"
	"github.com/turtacn/ClauseLens/internal/domain/clause"
	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseLens/pkg/errors"
	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

// NewAnalyzeCmd groups the commands that call the analysis backend.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a clause or a PDF contract with the backend",
	}
	cmd.AddCommand(newAnalyzeClauseCmd(), newAnalyzeDocumentCmd())
	return cmd
}

// ClauseAnalysis is the CLI rendering of a single-clause prediction.
type ClauseAnalysis struct {
	Mode           contract.PredictionKind `json:"mode"`
	Source         string                  `json:"source,omitempty"`
	Label          string                  `json:"label"`
	Confidence     float64                 `json:"confidence"`
	Probabilities  []float64               `json:"probabilities,omitempty"`
	Category       clause.CategoryInfo     `json:"category"`
	Score          int                     `json:"score"`
	UsedFallback   bool                    `json:"used_fallback,omitempty"`
	FallbackReason string                  `json:"fallback_reason,omitempty"`
	BackendError   string                  `json:"backend_error,omitempty"`
	Explainability clause.Explainability   `json:"explainability"`
}

// NewClauseAnalysis derives the display fields of a prediction.
func NewClauseAnalysis(text string, p *contract.Prediction) *ClauseAnalysis {
	e := clause.ExplainPrediction(p)
	label := clause.Label(p)
	a := &ClauseAnalysis{
		Label:          label,
		Confidence:     clause.Confidence(p),
		Probabilities:  clause.Probabilities(p),
		Category:       clause.Info(clause.Classify(text)),
		Score:          clause.Score(text, label, e.OriginalExplanation),
		Explainability: e,
	}
	if p != nil {
		a.Mode = p.Kind
		a.Source = p.Source
		a.UsedFallback = p.UsedFallback
		a.FallbackReason = p.FallbackReason
		a.BackendError = p.Error
	}
	return a
}

func (a *ClauseAnalysis) WriteText(w io.Writer) {
	fmt.Fprintf(w, "Risk:        %s\n", levelColor(contract.ParseRiskLevel(a.Label)).Sprint(a.Label))
	fmt.Fprintf(w, "Mode:        %s", a.Mode)
	if a.Source != "" {
		fmt.Fprintf(w, " (%s)", a.Source)
	}
	fmt.Fprintln(w)
	if a.Confidence > 0 {
		fmt.Fprintf(w, "Confidence:  %.1f%%\n", a.Confidence*100)
	}
	if len(a.Probabilities) == 3 {
		fmt.Fprintf(w, "Probability: low %.1f%%  medium %.1f%%  high %.1f%%\n",
			a.Probabilities[0]*100, a.Probabilities[1]*100, a.Probabilities[2]*100)
	}
	fmt.Fprintf(w, "Category:    %s %s\n", a.Category.Icon, a.Category.Label)
	fmt.Fprintf(w, "Score:       %d/100\n", a.Score)
	if a.UsedFallback {
		fmt.Fprintf(w, "Fallback:    %s\n", a.FallbackReason)
	}
	if a.BackendError != "" {
		fmt.Fprintf(w, "%s %s\n", color.New(color.FgYellow).Sprint("Backend:"), a.BackendError)
	}
	for _, s := range clause.Sections(a.Explainability) {
		fmt.Fprintf(w, "\n%s %s\n", s.Icon, color.New(color.Bold).Sprint(s.Title))
		if s.Content != "" {
			fmt.Fprintf(w, "  %s\n", s.Content)
		}
		for _, item := range s.Items {
			fmt.Fprintf(w, "  - %s\n", item)
		}
	}
	fmt.Fprintf(w, "\n%s\n", clause.Advisory)
}

func (a *ClauseAnalysis) TableHeaders() []string {
	return []string{"LABEL", "MODE", "CONFIDENCE", "CATEGORY", "SCORE"}
}

func (a *ClauseAnalysis) TableRows() [][]string {
	return [][]string{{
		a.Label,
		string(a.Mode),
		strconv.FormatFloat(a.Confidence, 'f', 3, 64),
		a.Category.Label,
		strconv.Itoa(a.Score),
	}}
}

type analyzeClauseOptions struct {
	mode string
	file string
}

func newAnalyzeClauseCmd() *cobra.Command {
	opts := &analyzeClauseOptions{}
	cmd := &cobra.Command{
		Use:   "clause [text]",
		Short: "Predict the risk of one clause",
		Long: "Sends clause text to the backend. The text comes from the argument,\n" +
			"from --file, or from stdin when --file is \"-\".",
		Example: `  clauselens analyze clause "Either party may terminate without notice."
  clauselens analyze clause --mode llm --file clause.txt
  pbpaste | clauselens analyze clause --file -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyzeClause(cmd, args, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "model mode: llm, gnn or hybrid (default: dashboard.default_mode)")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "read clause text from a file, or - for stdin")
	return cmd
}

func runAnalyzeClause(cmd *cobra.Command, args []string, opts *analyzeClauseOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	text, err := readClauseText(cmd, args, opts.file)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return errors.New(errors.ErrCodeClauseEmpty, "clause is empty")
	}

	modeName := opts.mode
	if modeName == "" {
		modeName = cliCtx.Config.Dashboard.DefaultMode
	}
	mode, ok := contract.ParsePredictionKind(modeName)
	if !ok {
		return errors.Newf(errors.ErrCodeModelModeInvalid, "invalid mode %q (must be llm, gnn or hybrid)", modeName)
	}

	backend, err := cliCtx.requireBackend()
	if err != nil {
		return err
	}
	ctx, cancel := cliCtx.withTimeout(cmd.Context())
	defer cancel()

	cliCtx.Logger.Debug("analyzing clause", logging.String("mode", string(mode)), logging.Int("chars", len(text)))
	p, err := backend.AnalyzeClause(ctx, mode, strings.TrimSpace(text))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeBackendUnavailable, "failed to analyze clause")
	}
	return PrintResult(cmd, NewClauseAnalysis(text, p))
}

func readClauseText(cmd *cobra.Command, args []string, file string) (string, error) {
	switch {
	case file == "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeValidation, "failed to read stdin")
		}
		return string(b), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeValidation, "failed to read clause file")
		}
		return string(b), nil
	case len(args) == 1:
		return args[0], nil
	default:
		return "", errors.New(errors.ErrCodeClauseEmpty, "provide clause text, --file, or --file - for stdin")
	}
}

// DocumentAnalysis is the CLI rendering of an analysed contract.
type DocumentAnalysis struct {
	Document string                 `json:"document"`
	Metrics  *dashboard.Metrics     `json:"metrics"`
	Clauses  []dashboard.ClauseView `json:"clauses"`
}

func (d *DocumentAnalysis) WriteText(w io.Writer) {
	m := d.Metrics
	fmt.Fprintf(w, "%s  %d clauses\n", color.New(color.Bold).Sprint(d.Document), m.TotalClauses)
	fmt.Fprintf(w, "Overall:   %s (%d/100, %s sensitivity)\n",
		levelColor(m.OverallLevel).Sprint(m.OverallLabel), m.OverallScore, m.Sensitivity.Label)
	fmt.Fprintf(w, "High %d (%.0f%%)  Medium %d (%.0f%%)  Low %d (%.0f%%)\n\n",
		m.HighRisk, m.HighPercent, m.MediumRisk, m.MediumPercent, m.LowRisk, m.LowPercent)
	fmt.Fprint(w, FormatTable(d.TableHeaders(), d.TableRows()))
	fmt.Fprintf(w, "\n%s\n", m.Advisory)
}

func (d *DocumentAnalysis) TableHeaders() []string {
	return []string{"#", "CATEGORY", "LABEL", "SCORE", "BAND", "TEXT"}
}

func (d *DocumentAnalysis) TableRows() [][]string {
	rows := make([][]string, 0, len(d.Clauses))
	for _, c := range d.Clauses {
		rows = append(rows, []string{
			strconv.Itoa(c.Index),
			c.Category.Label,
			c.Label,
			strconv.Itoa(c.Score),
			string(c.Band),
			truncateString(strings.Join(strings.Fields(c.Text), " "), 60),
		})
	}
	return rows
}

type analyzeDocumentOptions struct {
	sensitivity string
	search      string
	risk        string
	sort        string
}

func newAnalyzeDocumentCmd() *cobra.Command {
	opts := &analyzeDocumentOptions{}
	cmd := &cobra.Command{
		Use:     "document <contract.pdf>",
		Aliases: []string{"doc"},
		Short:   "Analyze every clause of a PDF contract",
		Example: `  clauselens analyze document nda.pdf
  clauselens analyze document msa.pdf --risk high --sensitivity conservative -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyzeDocument(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.sensitivity, "sensitivity", "", "sensitivity profile: conservative, balanced or aggressive")
	cmd.Flags().StringVarP(&opts.search, "search", "q", "", "show only clauses containing this text")
	cmd.Flags().StringVar(&opts.risk, "risk", dashboard.RiskAll, "show only clauses of this risk level (all, high, medium, low)")
	cmd.Flags().StringVar(&opts.sort, "sort", dashboard.SortByIndex, "sort order: index or risk")
	return cmd
}

func runAnalyzeDocument(cmd *cobra.Command, path string, opts *analyzeDocumentOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	sensitivity, err := resolveSensitivity(cliCtx, opts.sensitivity)
	if err != nil {
		return err
	}
	q, err := dashboard.Query{Search: opts.search, Risk: opts.risk, SortBy: opts.sort}.Normalize()
	if err != nil {
		return err
	}

	doc, err := analyzePDF(cmd, cliCtx, path)
	if err != nil {
		return err
	}
	metrics, err := dashboard.Compute(doc, sensitivity)
	if err != nil {
		return err
	}
	return PrintResult(cmd, &DocumentAnalysis{
		Document: filepath.Base(path),
		Metrics:  metrics,
		Clauses:  dashboard.Filter(dashboard.ClauseViews(doc, sensitivity), q),
	})
}

// analyzePDF reads a local PDF and sends it to the backend.
func analyzePDF(cmd *cobra.Command, cliCtx *CLIContext, path string) (*contract.DocumentResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "failed to read document")
	}
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeDocumentEmpty, "document is empty")
	}
	backend, err := cliCtx.requireBackend()
	if err != nil {
		return nil, err
	}
	ctx, cancel := cliCtx.withTimeout(cmd.Context())
	defer cancel()

	name := filepath.Base(path)
	cliCtx.Logger.Debug("analyzing document", logging.String("document", name), logging.Int("bytes", len(data)))
	doc, err := backend.AnalyzeDocument(ctx, name, data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBackendUnavailable, "failed to analyze document")
	}
	if cliCtx.Verbose {
		PrintSuccess(cmd, fmt.Sprintf("%s: %d clauses analyzed", name, len(doc.Results)))
	}
	return doc, nil
}

func resolveSensitivity(cliCtx *CLIContext, name string) (string, error) {
	if name == "" {
		return cliCtx.Config.Dashboard.Sensitivity, nil
	}
	p, ok := clause.LookupProfile(name)
	if !ok {
		return "", errors.Newf(errors.ErrCodeSensitivityUnknown, "unknown sensitivity %q", name)
	}
	return string(p.Name), nil
}

func levelColor(l contract.RiskLevel) *color.Color {
	switch l {
	case contract.RiskHigh:
		return color.New(color.FgRed, color.Bold)
	case contract.RiskMedium:
		return color.New(color.FgYellow, color.Bold)
	case contract.RiskLow:
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgWhite)
	}
}
