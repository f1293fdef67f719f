package summary

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/JesusIslam/tldr"
)

// Source records which path produced a summary, so callers and tests can
// tell an extracted summary from a truncation fallback.
type Source string

const (
	SourceExtracted Source = "extracted"
	SourceTruncated Source = "truncated"
	SourceEmpty     Source = "empty"
)

const (
	// targetSentences is the extractive summary length requested per item.
	targetSentences = 2
	// minPlausibleLen is the shortest summary accepted as a real extraction;
	// anything at or below it signals the summarizer had too little to work
	// with and the raw content is truncated instead.
	minPlausibleLen = 40
	// truncateLen caps the truncation fallback.
	truncateLen = 240
)

type Result struct {
	Text   string
	Source Source
}

// Summarizer produces short extractive summaries with a hard-truncation
// fallback. A fresh TextRank bag is built per call; the bag carries
// per-document state and is not reusable.
type Summarizer struct{}

func New() *Summarizer {
	return &Summarizer{}
}

func (s *Summarizer) Run(content string) Result {
	content = strings.TrimSpace(content)
	if content == "" {
		return Result{Source: SourceEmpty}
	}

	text := s.summarize(content)
	if utf8.RuneCountInString(text) > minPlausibleLen {
		return Result{Text: text, Source: SourceExtracted}
	}

	return Result{Text: truncate(content), Source: SourceTruncated}
}

func (s *Summarizer) summarize(content string) string {
	bag := tldr.New()
	text, err := bag.Summarize(content, targetSentences)
	if err != nil {
		slog.Debug("Extractive summarization failed", "error", err)
		return ""
	}
	return strings.TrimSpace(text)
}

func truncate(content string) string {
	runes := []rune(content)
	if len(runes) <= truncateLen {
		return content
	}
	return string(runes[:truncateLen]) + "..."
}
