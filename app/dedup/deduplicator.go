package dedup

import (
	"fmt"
	"log/slog"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"golang.org/x/text/unicode/norm"

	"newsbrief/app/database"
	"newsbrief/app/feed"
)

// Reason explains why a candidate was admitted or rejected.
type Reason string

const (
	ReasonAdmitted         Reason = "admitted"
	ReasonDuplicateURL     Reason = "duplicate_url"
	ReasonDuplicateContent Reason = "duplicate_content"
	ReasonSimilarTitle     Reason = "similar_title"
)

// Decision is the per-candidate admission outcome, in input order.
type Decision struct {
	URL    string
	Title  string
	Reason Reason
}

// Deduplicator decides admission for each candidate of a run. Candidates are
// checked in order against the durable seen store (exact URL, then content
// hash) and against the titles admitted earlier in the same run. The first
// of several near-duplicate titles wins, so admission is deterministic for a
// fixed input order and store snapshot.
type Deduplicator struct {
	store     database.SeenStore
	threshold int
}

func New(store database.SeenStore, threshold int) *Deduplicator {
	return &Deduplicator{store: store, threshold: threshold}
}

// Run folds over the candidates, threading the admitted-so-far list through
// each decision. It returns the admitted items in input order plus every
// decision taken.
func (d *Deduplicator) Run(candidates []feed.Item) ([]feed.Item, []Decision, error) {
	admitted := make([]feed.Item, 0, len(candidates))
	decisions := make([]Decision, 0, len(candidates))

	for _, candidate := range candidates {
		reason, err := d.decide(candidate, admitted)
		if err != nil {
			return nil, nil, fmt.Errorf("admission check failed for %s: %w", candidate.URL, err)
		}

		decisions = append(decisions, Decision{URL: candidate.URL, Title: candidate.Title, Reason: reason})

		if reason == ReasonAdmitted {
			admitted = append(admitted, candidate)
		} else {
			slog.Debug("Candidate rejected", "url", candidate.URL, "reason", string(reason))
		}
	}

	return admitted, decisions, nil
}

func (d *Deduplicator) decide(candidate feed.Item, admitted []feed.Item) (Reason, error) {
	seen, err := d.store.HasURL(candidate.URL)
	if err != nil {
		return "", err
	}
	if seen {
		return ReasonDuplicateURL, nil
	}

	seen, err = d.store.HasContentHash(candidate.ContentHash)
	if err != nil {
		return "", err
	}
	if seen {
		return ReasonDuplicateContent, nil
	}

	for _, prev := range admitted {
		if TitleSimilarity(candidate.Title, prev.Title) >= d.threshold {
			return ReasonSimilarTitle, nil
		}
	}

	return ReasonAdmitted, nil
}

// TitleSimilarity scores two titles on a 0-100 token-set scale, tolerant to
// word reordering and partial overlap.
func TitleSimilarity(a, b string) int {
	return fuzzy.TokenSetRatio(foldTitle(a), foldTitle(b))
}

// foldTitle lowercases and NFC-normalizes a title. Korean feeds deliver a
// mix of precomposed and decomposed Hangul; without NFC the same title can
// compare as entirely different tokens.
func foldTitle(title string) string {
	return norm.NFC.String(strings.ToLower(title))
}
