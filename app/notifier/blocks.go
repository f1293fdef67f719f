package notifier

import (
	"fmt"
	"strings"
	"time"

	slackapi "github.com/slack-go/slack"
)

const (
	headerTitle  = "버거 업계 데일리 브리핑"
	emptyMessage = "오늘 새 소식이 없습니다."
	maxTitleLen  = 160
)

// Item is one rendered digest entry.
type Item struct {
	Title   string
	URL     string
	Summary string
}

// buildBlocks assembles the Block Kit payload: a dated header, then one
// section per item with a divider between them, or a single "no news"
// section when the run produced nothing.
func buildBlocks(items []Item, now time.Time, brands []string) []slackapi.Block {
	header := fmt.Sprintf("%s • %s", headerTitle, now.Format("2006-01-02 (Mon)"))

	blocks := []slackapi.Block{
		slackapi.NewHeaderBlock(slackapi.NewTextBlockObject(slackapi.PlainTextType, header, false, false)),
		slackapi.NewDividerBlock(),
	}

	if len(items) == 0 {
		blocks = append(blocks, slackapi.NewSectionBlock(
			slackapi.NewTextBlockObject(slackapi.MarkdownType, emptyMessage, false, false), nil, nil))
		return blocks
	}

	for _, item := range items {
		title := truncateTitle(item.Title)
		text := fmt.Sprintf("*<%s|%s>*%s\n%s", item.URL, title, brandTag(title, item.Summary, brands), item.Summary)

		blocks = append(blocks,
			slackapi.NewSectionBlock(slackapi.NewTextBlockObject(slackapi.MarkdownType, text, false, false), nil, nil),
			slackapi.NewDividerBlock())
	}

	return blocks
}

// brandTag returns a " • <brand>" suffix for the first brand hint found in
// the title or summary, case-insensitively. At most one tag per item.
func brandTag(title, summary string, brands []string) string {
	blob := strings.ToLower(title + " " + summary)
	for _, brand := range brands {
		if strings.Contains(blob, strings.ToLower(brand)) {
			return " • " + brand
		}
	}
	return ""
}

func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) > maxTitleLen {
		return string(runes[:maxTitleLen])
	}
	return title
}
