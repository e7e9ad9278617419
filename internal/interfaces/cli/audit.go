package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/ClauseLens/internal/application/dashboard"
	"github.com/turtacn/ClauseLens/pkg/errors"
)

// AuditList is the filtered backend audit log.
type AuditList struct {
	Action string                `json:"action"`
	Total  int                   `json:"total"`
	Logs   []dashboard.AuditView `json:"logs"`
}

func (a *AuditList) WriteText(w io.Writer) {
	if len(a.Logs) == 0 {
		fmt.Fprintln(w, "No audit entries.")
		return
	}
	for _, l := range a.Logs {
		fmt.Fprintf(w, "%s  %s\n", color.New(color.Bold).Sprint(l.Title), l.Timestamp)
		if l.DocumentName != "" {
			fmt.Fprintf(w, "  document: %s\n", l.DocumentName)
		}
		if l.Excerpt != "" {
			fmt.Fprintf(w, "  clause:   %s\n", l.Excerpt)
		}
		if l.Result != "" {
			fmt.Fprintf(w, "  result:   %s", l.Result)
			if l.Confidence != nil {
				fmt.Fprintf(w, " (%.0f%%)", *l.Confidence*100)
			}
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintf(w, "\n%d entries\n", a.Total)
}

func (a *AuditList) TableHeaders() []string {
	return []string{"TIMESTAMP", "ACTION", "RESULT", "SUBJECT"}
}

func (a *AuditList) TableRows() [][]string {
	rows := make([][]string, 0, len(a.Logs))
	for _, l := range a.Logs {
		subject := l.DocumentName
		if subject == "" {
			subject = truncateString(strings.Join(strings.Fields(l.Excerpt), " "), 50)
		}
		rows = append(rows, []string{l.Timestamp, l.ActionType, l.Result, subject})
	}
	return rows
}

// NewAuditCmd prints the backend's audit log.
func NewAuditCmd() *cobra.Command {
	var action string
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the backend audit log",
		Example: `  clauselens audit
  clauselens audit --action document_analysis -o table`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			action = strings.ToLower(strings.TrimSpace(action))
			if !validAuditAction(action) {
				return errors.Newf(errors.ErrCodeValidation, "unknown audit action %q (must be one of %s)",
					action, strings.Join(dashboard.AuditFilters, ", "))
			}
			backend, err := cliCtx.requireBackend()
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.withTimeout(cmd.Context())
			defer cancel()

			log, err := backend.AuditLog(ctx)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeBackendUnavailable, "failed to fetch audit log")
			}
			views := dashboard.AuditViews(log, action)
			return PrintResult(cmd, &AuditList{Action: action, Total: len(views), Logs: views})
		},
	}
	cmd.Flags().StringVarP(&action, "action", "a", dashboard.RiskAll, "filter by action: all, clause_analysis or document_analysis")
	return cmd
}

func validAuditAction(action string) bool {
	if action == "" {
		return true
	}
	for _, a := range dashboard.AuditFilters {
		if a == action {
			return true
		}
	}
	return false
}
