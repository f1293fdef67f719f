package digest

import (
	"context"
	"errors"
	"testing"
	"time"

	"newsbrief/app/database"
	"newsbrief/app/dedup"
	"newsbrief/app/feed"
	"newsbrief/app/notifier"
	"newsbrief/app/sources"
	"newsbrief/app/summary"
)

type fakeCollector struct {
	entries map[string][]feed.Entry
	failing map[string]bool
}

func (c *fakeCollector) Run(ctx context.Context, feedURL string) ([]feed.Entry, error) {
	if c.failing[feedURL] {
		return nil, errors.New("connection refused")
	}
	return c.entries[feedURL], nil
}

type fakeExtractor struct {
	content map[string]string
}

func (e *fakeExtractor) Extract(ctx context.Context, pageURL string) string {
	return e.content[pageURL]
}

type fakeSender struct {
	fail      bool
	delivered [][]notifier.Item
}

func (s *fakeSender) Deliver(ctx context.Context, items []notifier.Item, now time.Time) error {
	if s.fail {
		return errors.New("webhook returned 500")
	}
	s.delivered = append(s.delivered, items)
	return nil
}

type memStore struct {
	urls   map[string]database.SeenRecord
	hashes map[string]bool
}

func newMemStore() *memStore {
	return &memStore{urls: make(map[string]database.SeenRecord), hashes: make(map[string]bool)}
}

func (s *memStore) HasURL(url string) (bool, error) {
	_, ok := s.urls[url]
	return ok, nil
}

func (s *memStore) HasContentHash(hash string) (bool, error) {
	if hash == "" {
		return false, nil
	}
	return s.hashes[hash], nil
}

func (s *memStore) Insert(record database.SeenRecord) error {
	if _, ok := s.urls[record.URL]; ok {
		return nil
	}
	s.urls[record.URL] = record
	if record.ContentHash != "" {
		s.hashes[record.ContentHash] = true
	}
	return nil
}

func (s *memStore) Count() (int, error) {
	return len(s.urls), nil
}

var seoul = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		panic(err)
	}
	return loc
}()

var runTime = time.Date(2025, 9, 1, 8, 0, 0, 0, seoul)

func testOptions() Options {
	return Options{
		Location:          seoul,
		RecencyWindow:     48 * time.Hour,
		MaxItems:          15,
		FingerprintPrefix: 4000,
		Now:               func() time.Time { return runTime },
	}
}

func newTestRunner(src *sources.Sources, collector Collector, extractor ContentExtractor,
	sender Sender, store database.SeenStore, opts Options) *Runner {

	return NewRunner(src,
		collector,
		feed.NewFilterer(src.Keywords),
		extractor,
		dedup.New(store, 80),
		summary.New(),
		sender,
		store,
		opts)
}

func TestRunner_Run_EndToEnd(t *testing.T) {
	src := &sources.Sources{
		Feeds:    []string{"https://feed.example/rss"},
		Keywords: []string{"버거", "신메뉴"},
	}
	collector := &fakeCollector{entries: map[string][]feed.Entry{
		"https://feed.example/rss": {
			{Title: "버거킹 신메뉴 출시", URL: "https://x.com/a", SummaryHint: "새로운 버거 한정판"},
			{Title: "날씨 예보", URL: "https://x.com/weather", SummaryHint: "주말 날씨"},
		},
	}}
	sender := &fakeSender{}
	store := newMemStore()

	runner := newTestRunner(src, collector, &fakeExtractor{}, sender, store, testOptions())

	if err := runner.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(sender.delivered) != 1 {
		t.Fatalf("Expected one delivery, got %d", len(sender.delivered))
	}

	items := sender.delivered[0]
	if len(items) != 1 {
		t.Fatalf("Expected 1 digest item (irrelevant entry filtered), got %d", len(items))
	}
	if items[0].Title != "버거킹 신메뉴 출시" {
		t.Errorf("Unexpected title: '%s'", items[0].Title)
	}
	if items[0].URL != "https://x.com/a" {
		t.Errorf("Unexpected URL: '%s'", items[0].URL)
	}
	// Fetch yielded nothing, so content fell back to the summary hint, and
	// the hint is too short for extraction, so it passes through verbatim.
	if items[0].Summary != "새로운 버거 한정판" {
		t.Errorf("Expected summary to fall back to the feed hint, got '%s'", items[0].Summary)
	}

	record, ok := store.urls["https://x.com/a"]
	if !ok {
		t.Fatal("Admitted item must be recorded in the seen store after delivery")
	}
	if record.ContentHash != feed.Fingerprint("새로운 버거 한정판", 4000) {
		t.Error("Seen record should carry the fingerprint of the fallback content")
	}
	if record.PublishedAt != runTime.Format(time.RFC3339) {
		t.Errorf("Absent publish date should persist as the run time, got '%s'", record.PublishedAt)
	}
}

func TestRunner_Run_DeliveryFailureSkipsPersist(t *testing.T) {
	src := &sources.Sources{
		Feeds:    []string{"https://feed.example/rss"},
		Keywords: []string{"버거"},
	}
	collector := &fakeCollector{entries: map[string][]feed.Entry{
		"https://feed.example/rss": {
			{Title: "버거 소식", URL: "https://x.com/a", SummaryHint: "버거 한정판"},
		},
	}}
	store := newMemStore()

	failing := &fakeSender{fail: true}
	runner := newTestRunner(src, collector, &fakeExtractor{}, failing, store, testOptions())

	if err := runner.Run(context.Background()); err == nil {
		t.Fatal("Delivery failure must fail the run")
	}
	if count, _ := store.Count(); count != 0 {
		t.Fatalf("Nothing may be persisted after a failed delivery, found %d records", count)
	}

	// The next run sees identical feed state and delivers the same item.
	working := &fakeSender{}
	runner = newTestRunner(src, collector, &fakeExtractor{}, working, store, testOptions())

	if err := runner.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(working.delivered[0]) != 1 || working.delivered[0][0].URL != "https://x.com/a" {
		t.Error("Retry run must reproduce the identical admitted set")
	}
}

func TestRunner_Run_SecondRunSuppressed(t *testing.T) {
	src := &sources.Sources{
		Feeds:    []string{"https://feed.example/rss"},
		Keywords: []string{"버거"},
	}
	collector := &fakeCollector{entries: map[string][]feed.Entry{
		"https://feed.example/rss": {
			{Title: "버거 소식", URL: "https://x.com/a", SummaryHint: "버거 한정판"},
		},
	}}
	store := newMemStore()
	sender := &fakeSender{}

	runner := newTestRunner(src, collector, &fakeExtractor{}, sender, store, testOptions())

	if err := runner.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := runner.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(sender.delivered) != 2 {
		t.Fatalf("Expected two deliveries, got %d", len(sender.delivered))
	}
	if len(sender.delivered[1]) != 0 {
		t.Errorf("Second run must suppress the already-notified item, got %d items", len(sender.delivered[1]))
	}
}

func TestRunner_Run_RecencyAndRanking(t *testing.T) {
	oneHourAgo := runTime.Add(-1 * time.Hour)
	twoHoursAgo := runTime.Add(-2 * time.Hour)
	threeDaysAgo := runTime.Add(-72 * time.Hour)

	src := &sources.Sources{
		Feeds:    []string{"https://feed.example/rss"},
		Keywords: []string{"버거", "치킨", "피자", "커피"},
	}
	collector := &fakeCollector{entries: map[string][]feed.Entry{
		"https://feed.example/rss": {
			{Title: "버거 신제품 소식", URL: "https://x.com/a", PublishedAt: &oneHourAgo, SummaryHint: "버거"},
			{Title: "옛날 피자 가게 기사", URL: "https://x.com/old", PublishedAt: &threeDaysAgo, SummaryHint: "피자"},
			{Title: "치킨 프랜차이즈 업데이트", URL: "https://x.com/b", PublishedAt: &twoHoursAgo, SummaryHint: "치킨"},
			{Title: "커피 브랜드 콜라보 속보", URL: "https://x.com/c", SummaryHint: "커피"},
		},
	}}
	sender := &fakeSender{}

	runner := newTestRunner(src, collector, &fakeExtractor{}, sender, newMemStore(), testOptions())

	if err := runner.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	items := sender.delivered[0]
	if len(items) != 3 {
		t.Fatalf("Expected 3 items (stale entry dropped), got %d", len(items))
	}

	// Absent timestamp counts as the run time and sorts first.
	want := []string{"https://x.com/c", "https://x.com/a", "https://x.com/b"}
	for i, url := range want {
		if items[i].URL != url {
			t.Errorf("Position %d: expected %s, got %s", i, url, items[i].URL)
		}
	}
}

func TestRunner_Run_FeedFailureContinues(t *testing.T) {
	src := &sources.Sources{
		Feeds:    []string{"https://bad.example/rss", "https://feed.example/rss"},
		Keywords: []string{"버거"},
	}
	collector := &fakeCollector{
		failing: map[string]bool{"https://bad.example/rss": true},
		entries: map[string][]feed.Entry{
			"https://feed.example/rss": {
				{Title: "버거 소식", URL: "https://x.com/a", SummaryHint: "버거"},
			},
		},
	}
	sender := &fakeSender{}

	runner := newTestRunner(src, collector, &fakeExtractor{}, sender, newMemStore(), testOptions())

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("A single failing feed must not abort the run: %v", err)
	}
	if len(sender.delivered[0]) != 1 {
		t.Errorf("Expected the healthy feed's item, got %d items", len(sender.delivered[0]))
	}
}

func TestRunner_Run_CapDeliversFifteenButPersistsAll(t *testing.T) {
	src := &sources.Sources{
		Feeds:    []string{"https://feed.example/rss"},
		Keywords: []string{"항목"},
	}

	var entries []feed.Entry
	for i := 0; i < 20; i++ {
		ts := runTime.Add(-time.Duration(i) * time.Minute)
		entries = append(entries, feed.Entry{
			Title:       "항목 " + string(rune('A'+i)),
			URL:         "https://x.com/" + string(rune('a'+i)),
			PublishedAt: &ts,
			SummaryHint: "항목 " + string(rune('A'+i)),
		})
	}
	collector := &fakeCollector{entries: map[string][]feed.Entry{"https://feed.example/rss": entries}}
	sender := &fakeSender{}
	store := newMemStore()

	// Threshold above 100 disables fuzzy dedup; the generated titles only
	// differ by one character and this test is about the delivery cap.
	runner := NewRunner(src,
		collector,
		feed.NewFilterer(src.Keywords),
		&fakeExtractor{},
		dedup.New(store, 101),
		summary.New(),
		sender,
		store,
		testOptions())

	if err := runner.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(sender.delivered[0]) != 15 {
		t.Errorf("Expected delivery capped at 15 items, got %d", len(sender.delivered[0]))
	}
	if count, _ := store.Count(); count != 20 {
		t.Errorf("Every admitted item must be persisted regardless of the cap, got %d", count)
	}
}

func TestRunner_FetchAndFingerprint_ContentSources(t *testing.T) {
	src := &sources.Sources{Keywords: []string{"any"}}
	extractor := &fakeExtractor{content: map[string]string{
		"https://x.com/full": "full article text from the extractor",
	}}

	runner := newTestRunner(src, &fakeCollector{}, extractor, &fakeSender{}, newMemStore(), testOptions())

	items := runner.fetchAndFingerprint(context.Background(), []feed.Entry{
		{Title: "Extracted", URL: "https://x.com/full", SummaryHint: "hint"},
		{Title: "Fallback", URL: "https://x.com/miss", SummaryHint: "feed hint text"},
		{Title: "Empty", URL: "https://x.com/none"},
	})

	if items[0].ContentSource != feed.ContentExtracted || items[0].Content != "full article text from the extractor" {
		t.Error("Successful extraction should win over the hint")
	}
	if items[1].ContentSource != feed.ContentFallbackHint || items[1].Content != "feed hint text" {
		t.Error("Failed extraction should fall back to the summary hint")
	}
	if items[2].ContentSource != feed.ContentEmpty || items[2].Content != "" {
		t.Error("No extraction and no hint should leave content empty")
	}
	if items[2].ContentHash != "" {
		t.Error("Empty content must have an empty fingerprint")
	}
	if items[0].ContentHash == items[1].ContentHash {
		t.Error("Different content must fingerprint differently")
	}
}
