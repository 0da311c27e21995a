package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/andres10976/cve-monitor/internal/service/digest"
)

func newDigestCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "digest",
		Short: "Email today's reports now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config()
			closer, err := setupLogging(cfg, cmd.ErrOrStderr(), true)
			if err != nil {
				return fmt.Errorf("setup logging: %w", err)
			}
			defer closer.Close()

			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			res := a.monitor.DigestCycle(cmd.Context())
			out := cmd.OutOrStdout()
			switch res.Outcome {
			case digest.OutcomeSent:
				color.New(color.FgGreen).Fprintf(out, "digest sent with %d report(s)\n", res.Reports)
			case digest.OutcomeSkipped:
				color.New(color.FgYellow).Fprintln(out, "digest skipped: no email configuration")
			default:
				color.New(color.FgRed).Fprintln(out, "digest failed")
				return res.Err
			}
			return nil
		},
	}
}
