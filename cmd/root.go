package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/modesim/app"
	"github.com/kilianp07/modesim/config"
	"github.com/kilianp07/modesim/infra/logger"
)

// NewRootCmd returns the modesim command tree. Running the root command runs
// the experiment.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "modesim",
		Short:         "Car/pt mode choice experiment on a synthetic corridor",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExperiment(cmd, opts)
		},
	}
	opts.bind(root)

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the experiment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExperiment(cmd, opts)
		},
	})
	root.AddCommand(newValidateCmd(opts))
	root.AddCommand(newHistoryCmd(opts))
	root.AddCommand(newServeCmd(opts))
	return root
}

// Execute runs the CLI.
func Execute() error {
	err := NewRootCmd().ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return err
}

// loadConfig loads the configuration with the command line overrides and
// applies the log level.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	overrides, err := opts.overrides(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.configPath, overrides)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runExperiment(cmd *cobra.Command, opts *options) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}
