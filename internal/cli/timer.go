package cli

import (
	"fmt"
	"strings"

	"timetracker/internal/timetracker"

	"github.com/spf13/cobra"
)

func newStartCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "start [description]",
		Short: "Start a timer",
		Long: `Start a new timer. Only one timer can run at a time.

Examples:
  timetracker start draft report`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			e, err := a.svc.StartTimer(cmd.Context(), timetracker.System(opts.user), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", styles.Running.Render("Timer started"), styles.Muted.Render(e.ID))
			return nil
		},
	}
}

func newStopCmd(opts *options) *cobra.Command {
	var in timetracker.StopInput
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running timer",
		Long: `Stop the running timer and assign it to a project.

Examples:
  timetracker stop --project <project-id>
  timetracker stop --project new --new-project Acme --client <client-id>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			running, err := a.svc.Running(cmd.Context())
			if err != nil {
				return err
			}
			if running == nil {
				return fmt.Errorf("no timer running")
			}
			e, err := a.svc.StopTimer(cmd.Context(), timetracker.System(opts.user), running.ID, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s after %s on %s\n",
				styles.Running.Render("Timer stopped"),
				styles.Value.Render(formatMinutes(e.DurationMinutes())),
				styles.Value.Render(e.ProjectName))
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.Project, "project", "p", "", `Project id, or "new" to create one`)
	cmd.Flags().StringVar(&in.NewProjectName, "new-project", "", "Name of the project to create")
	cmd.Flags().StringVar(&in.NewProjectClient, "client", "", "Client id of the project to create")
	cmd.Flags().StringVarP(&in.Task, "task", "t", "", `Task id, or "new" to create one`)
	cmd.Flags().StringVar(&in.NewTaskName, "new-task", "", "Name of the task to create")
	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "Replace the description")
	return cmd
}

func formatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", m/60, m%60)
}
