package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maxpv/expman/internal/config"
)

func newIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "id",
		Short: "Print the experiment identifier without touching the filesystem",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			id, err := newManager(cfg).ExperimentID(cfg.Hyperparameters)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}
