package feed

import (
	"regexp"
	"strings"
)

var (
	trackingParamPattern = regexp.MustCompile(`(\?|&)(utm_[^=]+|fbclid|gclid)=[^&]+`)
	danglingSepPattern   = regexp.MustCompile(`[?&]$`)
)

// NormalizeURL canonicalizes a feed link by stripping known tracking query
// parameters and any separator they leave dangling. Normalizing an already
// normalized URL returns it unchanged.
func NormalizeURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	url := trackingParamPattern.ReplaceAllString(rawURL, "")
	url = danglingSepPattern.ReplaceAllString(url, "")

	return strings.TrimSpace(url)
}
