package cli

import (
	"context"
	"fmt"
	"os"

	"timetracker/internal/config"
	"timetracker/internal/events"
	"timetracker/internal/logger"
	"timetracker/internal/storage"
	"timetracker/internal/timetracker"

	"github.com/spf13/cobra"
)

// Version is set by the binary at build time
var Version = "dev"

type options struct {
	configPath string
	user       string
}

// NewRootCmd builds the timetracker command tree
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "timetracker",
		Short: "Track billable time against clients, projects and tasks",
		Long: `timetracker records time entries with a single running timer and an
append-only audit trail of every change.

Usage:
  timetracker serve                     Run the HTTP API
  timetracker start <description>       Start a timer
  timetracker stop --project <id>       Stop the running timer
  timetracker status                    Show the running timer and today's hours
  timetracker audit [--action KIND]     Browse the audit trail`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"Path to the configuration file (YAML, or TOML with a .toml extension)")
	root.PersistentFlags().StringVarP(&opts.user, "user", "u", os.Getenv("USER"),
		"User recorded in the audit trail for local commands")

	root.AddCommand(
		newServeCmd(opts),
		newStartCmd(opts),
		newStopCmd(opts),
		newStatusCmd(opts),
		newAuditCmd(opts),
	)
	return root
}

// Execute runs the command tree and returns the process exit code
func Execute(ctx context.Context) int {
	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), styles.Error.Render("Error: ")+err.Error())
		return 1
	}
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		} else {
			return config.Default()
		}
	}
	return config.Load(path)
}

// app bundles what every command needs
type app struct {
	cfg *config.Config
	db  *storage.DB
	pub events.Publisher
	svc *timetracker.Service
}

func (a *app) Close() {
	if err := a.pub.Close(); err != nil {
		logger.Error("Failed to close event publisher", "error", err)
	}
	if err := a.db.Close(); err != nil {
		logger.Error("Failed to close database connection", "error", err)
	}
	logger.Sync()
}

// openApp loads the configuration and wires the store, publisher and service
func openApp(opts *options) (*app, error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Pretty)

	source := cfg.Database.Path
	if cfg.Database.Driver == config.DriverPostgres {
		source = cfg.Database.DSN
	}
	db, err := storage.Open(cfg.Database.Driver, source)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pub, err := newPublisher(cfg.Events)
	if err != nil {
		db.Close()
		return nil, err
	}

	svc := timetracker.New(db, cfg.Workspace, timetracker.WithPublisher(pub))
	return &app{cfg: cfg, db: db, pub: pub, svc: svc}, nil
}

func newPublisher(cfg config.EventsConfig) (events.Publisher, error) {
	if cfg.RedisAddr == "" {
		return events.Nop{}, nil
	}
	pub, err := events.NewRedisPublisher(events.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Channel:  cfg.Channel,
	})
	if err != nil {
		return nil, fmt.Errorf("connect event publisher: %w", err)
	}
	return pub, nil
}
