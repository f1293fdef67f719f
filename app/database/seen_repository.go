package database

import (
	"database/sql"
	"fmt"
)

var _ SeenStore = (*SeenRepository)(nil)

// SeenRepository handles database operations for the seen-items table
type SeenRepository struct {
	db *DB
}

// NewSeenRepository creates a new seen-items repository
func NewSeenRepository(db *DB) *SeenRepository {
	return &SeenRepository{db: db}
}

// HasURL checks whether an item with the given canonical URL was already notified
func (r *SeenRepository) HasURL(url string) (bool, error) {
	var one int
	err := r.db.QueryRow("SELECT 1 FROM seen_items WHERE url = ? LIMIT 1", url).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check seen url: %w", err)
	}
	return true, nil
}

// HasContentHash checks whether the given content fingerprint was already
// notified under any URL. An empty hash never matches: items without content
// must not collide on a spurious shared fingerprint.
func (r *SeenRepository) HasContentHash(hash string) (bool, error) {
	if hash == "" {
		return false, nil
	}

	var one int
	err := r.db.QueryRow("SELECT 1 FROM seen_items WHERE content_hash = ? LIMIT 1", hash).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check seen content hash: %w", err)
	}
	return true, nil
}

// Insert stores a record, ignoring it if the URL is already present.
func (r *SeenRepository) Insert(record SeenRecord) error {
	_, err := r.db.Exec(`
		INSERT INTO seen_items (url, title, content_hash, published_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (url) DO NOTHING
	`, record.URL, record.Title, record.ContentHash, record.PublishedAt)

	if err != nil {
		return fmt.Errorf("failed to insert seen record: %w", err)
	}

	return nil
}

// Count returns the total number of seen records
func (r *SeenRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM seen_items").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count seen records: %w", err)
	}
	return count, nil
}
