package sources

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates the sources file. The lists are immutable for the
// duration of a run; the loader is the only place they are produced.
func Load(path string) (*Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var src Sources
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}

	normalize(&src)

	if err := validate(&src); err != nil {
		return nil, fmt.Errorf("invalid sources file %s: %w", path, err)
	}

	return &src, nil
}

func normalize(src *Sources) {
	src.Feeds = trimNonEmpty(src.Feeds)
	src.Keywords = trimNonEmpty(src.Keywords)
	src.Brands = trimNonEmpty(src.Brands)
}

func validate(src *Sources) error {
	if len(src.Feeds) == 0 {
		return fmt.Errorf("at least one feed URL is required")
	}
	if len(src.Keywords) == 0 {
		return fmt.Errorf("at least one keyword is required")
	}
	for _, feed := range src.Feeds {
		if !strings.HasPrefix(feed, "http://") && !strings.HasPrefix(feed, "https://") {
			return fmt.Errorf("feed URL must be absolute: %s", feed)
		}
	}
	return nil
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
