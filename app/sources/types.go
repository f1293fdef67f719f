package sources

// Sources holds the static vocabularies driving a digest run: which feeds to
// poll, which keywords make an entry relevant, and which brand names may be
// tagged onto a digest block.
type Sources struct {
	Feeds    []string `yaml:"feeds"`
	Keywords []string `yaml:"keywords"`
	Brands   []string `yaml:"brands"`
}
