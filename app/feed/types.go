package feed

import (
	"time"
)

// Entry is a single feed entry after collection: canonical URL, trimmed
// title, and the publish timestamp when the feed carried one.
type Entry struct {
	Title       string
	URL         string
	PublishedAt *time.Time // nil when the feed had no usable timestamp
	SummaryHint string     // feed-supplied summary, used as content fallback
}

// ContentSource records which path produced an item's content.
type ContentSource string

const (
	ContentExtracted    ContentSource = "extracted"
	ContentFallbackHint ContentSource = "fallback_hint"
	ContentEmpty        ContentSource = "empty"
)

// Item is a candidate digest item derived from an Entry.
type Item struct {
	Entry

	Content       string
	ContentSource ContentSource
	ContentHash   string // hex digest, empty when Content is empty
	Summary       string // populated for admitted items only
}
