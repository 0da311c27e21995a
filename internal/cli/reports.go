package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/andres10976/cve-monitor/internal/model"
	"github.com/andres10976/cve-monitor/internal/service/report"
)

func newReportsCmd(opts *options) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List report artifacts",
		Long: `List the Markdown reports in the data directory.

With --date only that UTC day's reports are listed; these are the files the
daily digest would attach.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config()
			archive := report.NewArchive(cfg.DataDir)

			var (
				reports []model.Report
				err     error
			)
			if date != "" {
				day, perr := time.Parse(time.DateOnly, date)
				if perr != nil {
					return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
				}
				reports, err = archive.List(day)
			} else {
				reports, err = archive.All()
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(reports) == 0 {
				color.New(color.FgYellow).Fprintln(out, "No reports found in "+cfg.DataDir)
				return nil
			}
			renderReports(out, reports)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "only list reports from this UTC day (YYYY-MM-DD)")
	return cmd
}

func renderReports(w io.Writer, reports []model.Report) {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)

	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []string{
			strconv.FormatUint(r.Pull, 10),
			r.Name,
			strconv.FormatInt(r.Size, 10),
			r.ModTime.UTC().Format(time.RFC3339),
		})
	}
	table.Header([]string{"pull", "name", "bytes", "modified"})
	table.Bulk(rows)
	table.Render()
}
