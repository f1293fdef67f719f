package notifier

import (
	"context"
	"fmt"
	"time"

	slackapi "github.com/slack-go/slack"
)

// Notifier delivers a digest through a Slack incoming webhook. Delivery
// failure is fatal to the run: the caller must not persist anything the
// channel never received.
type Notifier struct {
	webhookURL string
	timeout    time.Duration
	brands     []string
}

func New(webhookURL string, timeout time.Duration, brands []string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		timeout:    timeout,
		brands:     brands,
	}
}

// BuildMessage assembles the webhook payload for a run.
func (n *Notifier) BuildMessage(items []Item, now time.Time) *slackapi.WebhookMessage {
	return &slackapi.WebhookMessage{
		Blocks: &slackapi.Blocks{BlockSet: buildBlocks(items, now, n.brands)},
	}
}

// Deliver posts the digest. Any error, including a non-2xx webhook
// response, is returned to the caller.
func (n *Notifier) Deliver(ctx context.Context, items []Item, now time.Time) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if err := slackapi.PostWebhookContext(timeoutCtx, n.webhookURL, n.BuildMessage(items, now)); err != nil {
		return fmt.Errorf("failed to deliver digest: %w", err)
	}

	return nil
}
