package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the persisted pull counter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config()
			closer, err := setupLogging(cfg, cmd.ErrOrStderr(), false)
			if err != nil {
				return fmt.Errorf("setup logging: %w", err)
			}
			defer closer.Close()

			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "pull_count: %d\n", a.store.Load(cmd.Context()).PullCount)
			return nil
		},
	}
}
