package digest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"newsbrief/app/database"
	"newsbrief/app/dedup"
	"newsbrief/app/feed"
	"newsbrief/app/notifier"
	"newsbrief/app/sources"
	"newsbrief/app/summary"
)

// Collector fetches and parses one feed source.
type Collector interface {
	Run(ctx context.Context, feedURL string) ([]feed.Entry, error)
}

// ContentExtractor is the best-effort article extraction collaborator.
type ContentExtractor interface {
	Extract(ctx context.Context, pageURL string) string
}

// Summarizer produces a short summary with a tagged outcome.
type Summarizer interface {
	Run(content string) summary.Result
}

// Sender formats and delivers the digest.
type Sender interface {
	Deliver(ctx context.Context, items []notifier.Item, now time.Time) error
}

// Options carries the run tunables.
type Options struct {
	Location          *time.Location
	RecencyWindow     time.Duration
	MaxItems          int
	FingerprintPrefix int
	Now               func() time.Time // test hook, defaults to time.Now
}

// Runner drives one digest run start to finish:
// collect, filter, fetch+fingerprint, dedup, summarize, rank, format,
// notify, persist. Nothing is written to the seen store until the digest
// was delivered, so a failed delivery is retried wholesale on the next run.
type Runner struct {
	src        *sources.Sources
	collector  Collector
	filterer   *feed.Filterer
	extractor  ContentExtractor
	deduper    *dedup.Deduplicator
	summarizer Summarizer
	sender     Sender
	store      database.SeenStore
	opts       Options
}

func NewRunner(src *sources.Sources, collector Collector, filterer *feed.Filterer,
	extractor ContentExtractor, deduper *dedup.Deduplicator, summarizer Summarizer,
	sender Sender, store database.SeenStore, opts Options) *Runner {

	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Runner{
		src:        src,
		collector:  collector,
		filterer:   filterer,
		extractor:  extractor,
		deduper:    deduper,
		summarizer: summarizer,
		sender:     sender,
		store:      store,
		opts:       opts,
	}
}

func (r *Runner) Run(ctx context.Context) error {
	start := r.opts.Now().In(r.opts.Location)
	since := start.Add(-r.opts.RecencyWindow)

	entries, stale := r.collect(ctx, since)
	relevant := r.filter(entries)
	candidates := r.fetchAndFingerprint(ctx, relevant)

	admitted, decisions, err := r.deduper.Run(candidates)
	if err != nil {
		return fmt.Errorf("deduplication failed: %w", err)
	}

	r.summarize(admitted)

	ranked := rank(admitted, start, r.opts.MaxItems)

	items := make([]notifier.Item, 0, len(ranked))
	for _, item := range ranked {
		items = append(items, notifier.Item{Title: item.Title, URL: item.URL, Summary: item.Summary})
	}

	if err := r.sender.Deliver(ctx, items, start); err != nil {
		return fmt.Errorf("digest delivery failed: %w", err)
	}

	// Persist only after delivery succeeded, and for every admitted item
	// of the run, not just the ranked cut: anything admitted was either
	// delivered or deliberately dropped by the cap, and must not reappear.
	if err := r.persist(admitted, start); err != nil {
		return err
	}

	slog.Info("Run completed",
		"collected", len(entries)+stale,
		"stale", stale,
		"relevant", len(relevant),
		"rejected", len(decisions)-len(admitted),
		"admitted", len(admitted),
		"delivered", len(items))

	return nil
}

// collect gathers entries from every configured feed. A single feed failing
// to fetch or parse is logged and skipped; it never aborts the run. Entries
// with a known publish date older than the recency window are dropped;
// entries without any timestamp are kept.
func (r *Runner) collect(ctx context.Context, since time.Time) ([]feed.Entry, int) {
	var entries []feed.Entry
	stale := 0

	for _, feedURL := range r.src.Feeds {
		collected, err := r.collector.Run(ctx, feedURL)
		if err != nil {
			slog.Warn("Feed collection failed, skipping", "feed", feedURL, "error", err)
			continue
		}

		for _, entry := range collected {
			if entry.PublishedAt != nil && entry.PublishedAt.Before(since) {
				stale++
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, stale
}

func (r *Runner) filter(entries []feed.Entry) []feed.Entry {
	relevant := make([]feed.Entry, 0, len(entries))
	for _, entry := range entries {
		if r.filterer.Relevant(entry.Title, entry.SummaryHint) {
			relevant = append(relevant, entry)
		}
	}
	return relevant
}

// fetchAndFingerprint resolves each entry's content: extracted article text
// when the fetch succeeds, the feed's summary hint otherwise, empty when
// neither exists. The fingerprint is computed over whichever source won.
func (r *Runner) fetchAndFingerprint(ctx context.Context, entries []feed.Entry) []feed.Item {
	items := make([]feed.Item, 0, len(entries))

	for _, entry := range entries {
		item := feed.Item{Entry: entry}

		switch content := r.extractor.Extract(ctx, entry.URL); {
		case content != "":
			item.Content = content
			item.ContentSource = feed.ContentExtracted
		case entry.SummaryHint != "":
			item.Content = entry.SummaryHint
			item.ContentSource = feed.ContentFallbackHint
		default:
			item.ContentSource = feed.ContentEmpty
		}

		item.ContentHash = feed.Fingerprint(item.Content, r.opts.FingerprintPrefix)
		items = append(items, item)
	}

	return items
}

func (r *Runner) summarize(items []feed.Item) {
	for i := range items {
		result := r.summarizer.Run(items[i].Content)
		items[i].Summary = result.Text
		if result.Source != summary.SourceExtracted {
			slog.Debug("Summary fallback used", "url", items[i].URL, "source", string(result.Source))
		}
	}
}

func (r *Runner) persist(items []feed.Item, runTime time.Time) error {
	for _, item := range items {
		published := runTime
		if item.PublishedAt != nil {
			published = *item.PublishedAt
		}

		record := database.SeenRecord{
			URL:         item.URL,
			Title:       item.Title,
			ContentHash: item.ContentHash,
			PublishedAt: published.Format(time.RFC3339),
		}
		if err := r.store.Insert(record); err != nil {
			return fmt.Errorf("failed to persist seen record for %s: %w", item.URL, err)
		}
	}
	return nil
}

// rank orders items by publish time descending and keeps the newest max.
// An absent timestamp counts as the run time, which sorts it to the top.
func rank(items []feed.Item, runTime time.Time, max int) []feed.Item {
	ranked := make([]feed.Item, len(items))
	copy(ranked, items)

	sort.SliceStable(ranked, func(i, j int) bool {
		return publishedOr(ranked[i], runTime).After(publishedOr(ranked[j], runTime))
	})

	if len(ranked) > max {
		ranked = ranked[:max]
	}
	return ranked
}

func publishedOr(item feed.Item, fallback time.Time) time.Time {
	if item.PublishedAt != nil {
		return *item.PublishedAt
	}
	return fallback
}
