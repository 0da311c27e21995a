// Package cli contains the cve-monitor commands.
package cli

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/andres10976/cve-monitor/internal/config"
)

type options struct {
	rssURL      string
	emailConfig string
	dataDir     string
	logFile     string
	verbose     bool
}

// NewRootCmd builds the command tree. The root command runs the daemon.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "cve-monitor",
		Short: "Poll a CVE RSS feed into dated Markdown reports",
		Long: `cve-monitor polls a CVE RSS feed, writes every non-empty pull to a
numbered Markdown report in the data directory, and emails the day's
reports once a day.

Example usage:
  cve-monitor                                  # run the daemon
  cve-monitor --email-config email.json        # run with the daily digest
  cve-monitor reports --date 2024-01-01        # list a day's reports
  cve-monitor digest                           # send today's digest now
  cve-monitor state                            # print the pull counter`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context(), opts.config(), cmd.OutOrStdout())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.rssURL, "rss-url", "", "CVE RSS feed URL (default: $CVE_FEED_URL or "+config.DefaultFeedURL+")")
	flags.StringVar(&opts.emailConfig, "email-config", "", "email configuration JSON file (default: $EMAIL_CONFIG)")
	flags.StringVar(&opts.dataDir, "data-dir", "", "directory for reports and state (default: $DATA_DIR or data)")
	flags.StringVar(&opts.logFile, "log-file", "", "log file, appended to (default: $LOG_FILE or log/cve_monitor.log)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newReportsCmd(opts), newDigestCmd(opts), newStateCmd(opts))
	return cmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// config loads the environment and applies flags on top.
func (o *options) config() *config.Config {
	cfg := config.Load()
	if o.rssURL != "" {
		cfg.FeedURL = o.rssURL
	}
	if o.emailConfig != "" {
		cfg.EmailConfigPath = o.emailConfig
	}
	if o.dataDir != "" {
		if cfg.StateFile == filepath.Join(cfg.DataDir, "state.json") {
			cfg.StateFile = filepath.Join(o.dataDir, "state.json")
		}
		cfg.DataDir = o.dataDir
	}
	if o.logFile != "" {
		cfg.LogFile = o.logFile
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}
	return cfg
}
