package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// Parser fetches and parses one feed source into normalized entries.
type Parser struct {
	gofeedParser *gofeed.Parser
	httpClient   *http.Client
	userAgent    string
	timeout      time.Duration
	location     *time.Location
}

func NewParser(httpClient *http.Client, userAgent string, timeout time.Duration, location *time.Location) *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
		httpClient:   httpClient,
		userAgent:    userAgent,
		timeout:      timeout,
		location:     location,
	}
}

func (p *Parser) Run(ctx context.Context, feedURL string) ([]Entry, error) {
	data, err := p.fetchFeed(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		entry, ok := p.normalizeItem(item)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// normalizeItem trims and canonicalizes one feed item. Title and link are
// required fields; items missing either are dropped here, before relevance
// filtering. The publish timestamp prefers the item's published date over
// its updated date; entries with neither keep a nil timestamp.
func (p *Parser) normalizeItem(item *gofeed.Item) (Entry, bool) {
	title := strings.TrimSpace(item.Title)
	link := NormalizeURL(strings.TrimSpace(item.Link))
	if title == "" || link == "" {
		return Entry{}, false
	}

	var published *time.Time
	for _, candidate := range []*time.Time{item.PublishedParsed, item.UpdatedParsed} {
		if candidate != nil {
			localized := candidate.In(p.location)
			published = &localized
			break
		}
	}

	return Entry{
		Title:       title,
		URL:         link,
		PublishedAt: published,
		SummaryHint: strings.TrimSpace(item.Description),
	}, true
}

func (p *Parser) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected HTTP status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}

	return data, nil
}
