package report

import (
	"fmt"
	"io"

	"github.com/andres10976/cve-monitor/internal/model"
)

const (
	defaultTitle       = "Untitled"
	defaultLink        = "No link"
	defaultPublished   = "Unknown"
	defaultDescription = "No description"
)

// Header identifies a report in its title line.
type Header struct {
	Date   string
	Time   string
	Pull   uint64
	Source string
}

// Render writes the Markdown body of a report.
func Render(w io.Writer, h Header, entries []model.Entry) error {
	if _, err := fmt.Fprintf(w, "# CVE Vulnerability Report - %s %s UTC (Pull #%d)\n\n", h.Date, h.Time, h.Pull); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Source: %s\n\n", h.Source); err != nil {
		return err
	}
	for _, e := range entries {
		link := or(e.Link, defaultLink)
		_, err := fmt.Fprintf(w, "## %s\n- **Link**: [%s](%s)\n- **Published**: %s\n- **Description**: %s\n\n",
			or(e.Title, defaultTitle),
			link, link,
			or(e.Published, defaultPublished),
			StripTags(or(e.Description, defaultDescription)),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
