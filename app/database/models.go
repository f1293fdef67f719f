package database

// SeenRecord is one previously notified item. Records are write-once: they
// are created after a digest is delivered and never updated or deleted.
type SeenRecord struct {
	URL         string
	Title       string
	ContentHash string // empty when the item had no content to fingerprint
	PublishedAt string // ISO-8601 text in the configured timezone
}
