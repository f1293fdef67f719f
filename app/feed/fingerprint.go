package feed

import (
	"crypto/sha1"
	"encoding/hex"
)

// Fingerprint computes a stable content hash over the first prefixLen
// characters of content. Truncating before hashing bounds cost and tolerates
// trailing-content drift between fetches of the same article. Empty content
// yields an empty fingerprint so content-less items never collide.
func Fingerprint(content string, prefixLen int) string {
	if content == "" {
		return ""
	}

	runes := []rune(content)
	if len(runes) > prefixLen {
		runes = runes[:prefixLen]
	}

	sum := sha1.Sum([]byte(string(runes)))
	return hex.EncodeToString(sum[:])
}
