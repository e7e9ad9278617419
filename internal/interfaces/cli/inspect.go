package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/ClauseLens/internal/domain/clause"
	"github.com/turtacn/ClauseLens/pkg/errors"
	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

// Inspection is the offline reading of a clause: category, heuristic score
// and the parsed explanation. No backend is involved.
type Inspection struct {
	Category       clause.CategoryInfo   `json:"category"`
	Level          string                `json:"level"`
	Score          int                   `json:"score"`
	Profile        clause.Profile        `json:"profile"`
	Band           contract.RiskLevel    `json:"band"`
	Palette        clause.Palette        `json:"palette"`
	Intensity      float64               `json:"intensity"`
	Explainability clause.Explainability `json:"explainability"`
}

func (i *Inspection) WriteText(w io.Writer) {
	fmt.Fprintf(w, "Category:  %s %s\n", i.Category.Icon, i.Category.Label)
	fmt.Fprintf(w, "Level:     %s\n", i.Level)
	fmt.Fprintf(w, "Score:     %d/100 -> %s under %s\n", i.Score, levelColor(i.Band).Sprint(i.Band), i.Profile.Label)
	for _, f := range i.Explainability.RiskFactors {
		fmt.Fprintf(w, "  risk factor: %s\n", f)
	}
	for _, d := range i.Explainability.DetectedDeviations {
		fmt.Fprintf(w, "  deviation:   %s\n", d)
	}
	for _, m := range i.Explainability.MissingProtections {
		fmt.Fprintf(w, "  missing:     %s\n", m)
	}
	if i.Explainability.SimplifiedExplanation != "" {
		fmt.Fprintf(w, "Plain English: %s\n", i.Explainability.SimplifiedExplanation)
	}
}

func (i *Inspection) TableHeaders() []string {
	return []string{"CATEGORY", "LEVEL", "SCORE", "PROFILE", "BAND"}
}

func (i *Inspection) TableRows() [][]string {
	return [][]string{{i.Category.Label, i.Level, strconv.Itoa(i.Score), string(i.Profile.Name), string(i.Band)}}
}

type inspectOptions struct {
	level       string
	explanation string
	profile     string
	file        string
}

// NewInspectCmd scores a clause locally, without calling the backend.
func NewInspectCmd() *cobra.Command {
	opts := &inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect [text]",
		Short: "Score and categorize a clause offline",
		Long: "Applies the local category rules and risk-score heuristic to a clause.\n" +
			"Pass the backend's level and explanation to reproduce a dashboard score.",
		Example: `  clauselens inspect "Vendor liability is unlimited." --level high \
    --explanation "Unlimited liability exposes the customer; lacks a cap."`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.level, "level", "l", "", "risk level reported by the backend (high, medium, low)")
	cmd.Flags().StringVarP(&opts.explanation, "explanation", "e", "", "explanation reported by the backend")
	cmd.Flags().StringVarP(&opts.profile, "profile", "p", "", "sensitivity profile (default: dashboard.sensitivity)")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "read clause text from a file, or - for stdin")
	return cmd
}

func runInspect(cmd *cobra.Command, args []string, opts *inspectOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	text, err := readClauseText(cmd, args, opts.file)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" && opts.explanation == "" {
		return errors.New(errors.ErrCodeClauseEmpty, "clause is empty")
	}
	profileName, err := resolveSensitivity(cliCtx, opts.profile)
	if err != nil {
		return err
	}
	return PrintResult(cmd, Inspect(text, opts.level, opts.explanation, profileName))
}

// Inspect builds the offline reading of a clause.
func Inspect(text, level, explanation, profile string) *Inspection {
	score := clause.Score(text, level, explanation)
	shown := strings.ToLower(strings.TrimSpace(level))
	if shown == "" {
		shown = "low"
	}
	return &Inspection{
		Category:  clause.Info(clause.Classify(text)),
		Level:     shown,
		Score:     score,
		Profile:   clause.ProfileOrDefault(profile),
		Band:      clause.ApplyThreshold(score, profile),
		Palette:   clause.RiskColor(score),
		Intensity: clause.Intensity(score),
		Explainability: clause.Explain(contract.RiskDetail{
			RiskLabel:   level,
			Explanation: explanation,
		}),
	}
}

// ProfileList lists the sensitivity profiles.
type ProfileList []clause.Profile

func (l ProfileList) TableHeaders() []string {
	return []string{"NAME", "HIGH", "MEDIUM", "DESCRIPTION"}
}

func (l ProfileList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, p := range l {
		rows = append(rows, []string{string(p.Name), ">=" + strconv.Itoa(p.High), ">=" + strconv.Itoa(p.Medium), p.Description})
	}
	return rows
}

func (l ProfileList) WriteText(w io.Writer) {
	fmt.Fprint(w, FormatTable(l.TableHeaders(), l.TableRows()))
}

// NewProfilesCmd lists the sensitivity profiles.
func NewProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the sensitivity profiles and their score cut points",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return PrintResult(cmd, ProfileList(clause.Profiles()))
		},
	}
}
