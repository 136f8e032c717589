package cli

import (
	"fmt"
	"io"

	"timetracker/internal/storage/models"
	"timetracker/internal/timetracker"

	"github.com/spf13/cobra"
)

func newAuditCmd(opts *options) *cobra.Command {
	var (
		action string
		user   string
		page   int
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Browse the audit trail, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := timetracker.AuditQuery{UserID: user, Page: page}
			if action != "" {
				a, err := models.ParseAuditAction(action)
				if err != nil {
					return err
				}
				q.Action = a
			}

			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.svc.QueryAudit(cmd.Context(), q)
			if err != nil {
				return err
			}
			renderAudit(cmd.OutOrStdout(), result, a.svc)
			return nil
		},
	}
	cmd.Flags().StringVarP(&action, "action", "a", "", "Only show one action kind (e.g. STOP_TIMER)")
	cmd.Flags().StringVar(&user, "by", "", "Only show actions by this user")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number")
	return cmd
}

func renderAudit(w io.Writer, page *timetracker.AuditPage, svc *timetracker.Service) {
	if len(page.Logs) == 0 {
		fmt.Fprintln(w, styles.Idle.Render("No audit entries"))
		return
	}
	for _, l := range page.Logs {
		user := "anonymous"
		if l.UserID != nil {
			user = *l.UserID
		}
		line := fmt.Sprintf("%s  %-16s %-10s %s",
			styles.Muted.Render(l.Timestamp.In(svc.Location()).Format("2006-01-02 15:04:05")),
			styles.Value.Render(l.Action.Label()),
			user,
			l.TimeEntryID,
		)
		if l.Notes != "" {
			line += "  " + styles.Muted.Render(l.Notes)
		}
		fmt.Fprintln(w, line)
	}
	footer := fmt.Sprintf("page %d, %d of %d entries", page.Page, len(page.Logs), page.Total)
	if page.HasNext {
		footer += fmt.Sprintf(", next: --page %d", page.Page+1)
	}
	fmt.Fprintln(w, styles.Muted.Render(footer))
}
