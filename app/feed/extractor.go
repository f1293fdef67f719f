package feed

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
)

// Extractor fetches an article page and extracts its readable text.
// The contract is best-effort: any failure (network error, timeout, bad
// status, unparseable HTML, empty extraction) yields an empty string.
// Falling back to the feed's summary hint is the caller's decision.
type Extractor struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

func NewExtractor(httpClient *http.Client, userAgent string, timeout time.Duration) *Extractor {
	return &Extractor{
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

func (e *Extractor) Extract(ctx context.Context, pageURL string) string {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", pageURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		slog.Debug("Article fetch failed", "url", pageURL, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Debug("Article fetch returned non-success status", "url", pageURL, "status", resp.StatusCode)
		return ""
	}

	article, err := readability.FromReader(resp.Body, parsedURL)
	if err != nil {
		slog.Debug("Content extraction failed", "url", pageURL, "error", err)
		return ""
	}

	return strings.TrimSpace(article.TextContent)
}
