package database

// SeenStore is the read/write contract the pipeline has with the durable
// seen-items table. Reads happen during dedup, writes only after delivery.
type SeenStore interface {
	HasURL(url string) (bool, error)
	HasContentHash(hash string) (bool, error)

	Insert(record SeenRecord) error
	Count() (int, error)
}
