package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maxpv/expman/internal/config"
)

func newResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume <experiment-id> <run-id>",
		Short: "Locate the latest checkpoint of an existing run",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			_, checkpoint, err := newManager(cfg).Resume(args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), checkpoint)
			return nil
		},
	}
}
