package feed

import (
	"strings"
)

// Filterer decides topical relevance based on a static keyword vocabulary.
type Filterer struct {
	keywords []string
}

func NewFilterer(keywords []string) *Filterer {
	return &Filterer{keywords: keywords}
}

// Relevant reports whether the title or summary hint contains any configured
// keyword, case-insensitively.
func (f *Filterer) Relevant(title, summaryHint string) bool {
	blob := strings.ToLower(title + " " + summaryHint)
	for _, keyword := range f.keywords {
		if strings.Contains(blob, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
