package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/andres10976/cve-monitor/internal/model"
)

var (
	// ErrNetwork covers transport failures and non-2xx responses.
	ErrNetwork = errors.New("network error")
	// ErrParse covers documents that arrived but could not be parsed as a feed.
	ErrParse = errors.New("parse error")
)

const userAgent = "cve-monitor/1.0 (+https://github.com/andres10976/cve-monitor)"

// maxBodyBytes bounds how much of a feed response is read.
const maxBodyBytes = 16 << 20

// Fetcher retrieves and parses a single syndication feed.
type Fetcher struct {
	url        string
	httpClient *http.Client
	parser     *gofeed.Parser
	maxBytes   int64
}

func NewFetcher(url string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		parser:   gofeed.NewParser(),
		maxBytes: maxBodyBytes,
	}
}

func (f *Fetcher) URL() string { return f.url }

// Fetch downloads the feed and returns its entries in feed order.
func (f *Fetcher) Fetch(ctx context.Context) ([]model.Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create feed request: %w", ErrNetwork, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch feed: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: feed returned status %d", ErrNetwork, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read feed body: %w", ErrNetwork, err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: feed exceeds %d bytes", ErrNetwork, f.maxBytes)
	}

	parsed, err := f.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: decode feed: %w", ErrParse, err)
	}

	entries := make([]model.Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		entries = append(entries, model.Entry{
			Title:       item.Title,
			Link:        item.Link,
			Published:   item.Published,
			Description: item.Description,
		})
	}
	return entries, nil
}
