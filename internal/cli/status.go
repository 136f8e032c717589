package cli

import (
	"fmt"
	"strings"

	"timetracker/internal/timetracker"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running timer and today's hours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			sum, err := a.svc.Summary(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStatus(a.cfg.Workspace.Name, sum))
			return nil
		},
	}
}

func progressBar(percent, width int) string {
	filled := percent * width / 100
	return styles.Progress.Render(strings.Repeat("█", filled)) + styles.Muted.Render(strings.Repeat("░", width-filled))
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, styles.Label.Render(label), styles.Value.Render(value))
}

func renderStatus(workspace string, sum *timetracker.Summary) string {
	lines := []string{styles.Title.Render(workspace)}

	if sum.Running != nil {
		desc := sum.Running.Description
		if desc == "" {
			desc = "(no description)"
		}
		lines = append(lines,
			styles.Running.Render("● Running")+" "+desc,
			row("Elapsed", formatMinutes(sum.ElapsedMinutes)),
			row("Progress", fmt.Sprintf("%s %d%%", progressBar(sum.ProgressPercent, 20), sum.ProgressPercent)),
		)
	} else {
		lines = append(lines, styles.Idle.Render("○ No timer running"))
	}

	lines = append(lines,
		"",
		row("Today", fmt.Sprintf("%.2fh", sum.HoursToday)),
		row("This week", fmt.Sprintf("%.2fh", sum.HoursThisWeek)),
	)
	for _, p := range sum.Projects {
		lines = append(lines, row("  "+p.ProjectName, fmt.Sprintf("%.2fh", p.Hours)))
	}
	return styles.Box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
