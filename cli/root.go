// Package cli implements the expman command-line interface.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/maxpv/expman/experiment"
	"github.com/maxpv/expman/internal/config"
	"github.com/maxpv/expman/pkg/errors"
	"github.com/maxpv/expman/pkg/log"
)

var (
	cfgFile  string
	logLevel string
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "expman",
		Short: "Deterministic, hash-addressed directories for training runs",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetupLogger(logLevel)
			installWarningSink()
		},
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "experiment.yaml", "experiment config file path")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(newPrepareCmd())
	root.AddCommand(newIDCmd())
	root.AddCommand(newResumeCmd())
	root.AddCommand(newReportCmd())
	return root
}

// installWarningSink routes module warnings (debug runs, shared experiment
// directories) through zerolog so they come out structured like the rest
// of the CLI's output.
func installWarningSink() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	errors.SetZerologWarnFunc(func(warning error) {
		event := logger.Warn()
		if obj, ok := warning.(zerolog.LogObjectMarshaler); ok {
			event = event.EmbedObject(obj)
		} else {
			event = event.Err(warning)
		}
		event.Msg("expman warning")
	})
}

// newManager builds the experiment Manager described by a config file.
func newManager(cfg *config.Config) *experiment.Manager {
	opts := []experiment.Option{
		experiment.WithCheckpointMonitor(cfg.Checkpoint.Monitor, cfg.Checkpoint.Minimize()),
	}
	if len(cfg.Monitored) > 0 {
		opts = append(opts, experiment.WithMonitoredKeys(cfg.Monitored...))
	}
	if cfg.Debug {
		opts = append(opts, experiment.WithDebug(true))
	}
	return experiment.NewManager(cfg.BaseDir, opts...)
}
