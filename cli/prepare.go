package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maxpv/expman/internal/config"
)

func newPrepareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prepare",
		Short: "Materialize the run directory for the configured hyperparameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			handle, err := newManager(cfg).Prepare(cfg.Hyperparameters)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), handle.RunDir)
			return nil
		},
	}
}
