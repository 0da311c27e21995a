// Command preview_feed fetches the CVE feed once and prints what the next
// report would contain, without touching the pull counter or data dir.
//
//	go run ./scripts/preview_feed.go [feed-url]
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/andres10976/cve-monitor/internal/config"
	"github.com/andres10976/cve-monitor/internal/model"
	"github.com/andres10976/cve-monitor/internal/service/feed"
	"github.com/andres10976/cve-monitor/internal/service/report"
)

func main() {
	url := config.DefaultFeedURL
	if len(os.Args) > 1 {
		url = os.Args[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	fmt.Printf("Fetching %s...\n", url)
	entries, err := feed.NewFetcher(url, 30*time.Second).Fetch(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch feed: %v", err)
	}
	fmt.Printf("Fetched %d entries\n\n", len(entries))

	// Count entries that will fall back to placeholder text
	missing := map[string]int{}
	withMarkup := 0
	for _, e := range entries {
		for field, v := range map[string]string{
			"title": e.Title, "link": e.Link, "published": e.Published, "description": e.Description,
		} {
			if v == "" {
				missing[field]++
			}
		}
		if report.StripTags(e.Description) != e.Description {
			withMarkup++
		}
	}

	fmt.Printf("=== FIELDS ===\n")
	for _, field := range []string{"title", "link", "published", "description"} {
		fmt.Printf("%-12s missing in %d entries\n", field, missing[field])
	}
	fmt.Printf("descriptions with markup: %d\n\n", withMarkup)

	fmt.Printf("=== PREVIEW ===\n")
	now := time.Now().UTC()
	h := report.Header{Date: now.Format("2006-01-02"), Time: now.Format("150405"), Pull: 0, Source: url}
	if err := report.Render(os.Stdout, h, first(entries, 5)); err != nil {
		log.Fatalf("Failed to render preview: %v", err)
	}
	if len(entries) > 5 {
		fmt.Printf("... and %d more\n", len(entries)-5)
	}
	if len(entries) == 0 {
		fmt.Println("no entries; the monitor would not write a report")
	}
}

func first(entries []model.Entry, n int) []model.Entry {
	if len(entries) > n {
		return entries[:n]
	}
	return entries
}
