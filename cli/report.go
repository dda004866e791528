package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/maxpv/expman/experiment"
	"github.com/maxpv/expman/report"
)

var (
	flagMetric   string
	flagMaximize bool
	flagPlot     string
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <run-dir>",
		Short: "Summarize a run's training log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			csvPath := filepath.Join(args[0], experiment.TrainingLogFileName)
			trainingLog, err := report.ParseTrainingLog(csvPath)
			if err != nil {
				return err
			}

			best, err := report.Best(trainingLog, flagMetric, !flagMaximize)
			if err != nil {
				return err
			}

			out, err := json.Marshal(best)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if flagPlot != "" {
				if err := report.PlotMetric(trainingLog, flagMetric, flagPlot); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "plot written to %s\n", flagPlot)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flagMetric, "metric", "loss", "metric column to summarize")
	cmd.Flags().BoolVar(&flagMaximize, "max", false, "treat larger metric values as better")
	cmd.Flags().StringVar(&flagPlot, "plot", "", "write a metric-vs-epoch PNG to this path")
	return cmd
}
