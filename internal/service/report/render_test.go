package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andres10976/cve-monitor/internal/model"
)

func TestRender_Layout(t *testing.T) {
	var b strings.Builder
	err := Render(&b, Header{Date: "2024-01-01", Time: "000005", Pull: 6, Source: "https://feed.example/high.xml"},
		[]model.Entry{{
			Title:       "CVE-2024-0001",
			Link:        "https://feed.example/CVE-2024-0001",
			Published:   "Mon, 01 Jan 2024 00:00:00 +0000",
			Description: "<p>Heap overflow</p>",
		}})
	require.NoError(t, err)

	want := "# CVE Vulnerability Report - 2024-01-01 000005 UTC (Pull #6)\n\n" +
		"Source: https://feed.example/high.xml\n\n" +
		"## CVE-2024-0001\n" +
		"- **Link**: [https://feed.example/CVE-2024-0001](https://feed.example/CVE-2024-0001)\n" +
		"- **Published**: Mon, 01 Jan 2024 00:00:00 +0000\n" +
		"- **Description**: Heap overflow\n\n"
	assert.Equal(t, want, b.String())
}

func TestRender_Defaults(t *testing.T) {
	var b strings.Builder
	require.NoError(t, Render(&b, Header{Date: "2024-01-01", Time: "000000", Pull: 1}, []model.Entry{{}}))

	out := b.String()
	assert.Contains(t, out, "## Untitled\n")
	assert.Contains(t, out, "- **Link**: [No link](No link)\n")
	assert.Contains(t, out, "- **Published**: Unknown\n")
	assert.Contains(t, out, "- **Description**: No description\n")
}

func TestRender_OneSectionPerEntry(t *testing.T) {
	var b strings.Builder
	entries := []model.Entry{{Title: "a"}, {Title: "b"}, {Title: "c"}}
	require.NoError(t, Render(&b, Header{Pull: 1}, entries))

	assert.Equal(t, 3, strings.Count(b.String(), "\n## "))
}
