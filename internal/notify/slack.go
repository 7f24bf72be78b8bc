// Package notify sends operator notifications about run outcomes. All sends
// are best-effort: a notification failure never fails a run.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"

	"github.com/SimonStenelid/X-team/internal/content"
)

// Notifier posts run outcomes to a Slack channel. A nil Notifier is valid
// and does nothing.
type Notifier struct {
	client  *slack.Client
	channel string
}

// NewNotifier creates a Slack notifier, or nil when disabled.
func NewNotifier(enabled bool, token, channel string) *Notifier {
	if !enabled || token == "" || channel == "" {
		return nil
	}
	return &Notifier{
		client:  slack.New(token),
		channel: channel,
	}
}

// PostSuccess announces a published post.
func (n *Notifier) PostSuccess(ctx context.Context, t content.Type, postID string, score float64) {
	n.send(ctx, fmt.Sprintf(":white_check_mark: Posted %s content (id %s, quality %.1f)", t, postID, score))
}

// RunAborted announces a run that produced no valid content.
func (n *Notifier) RunAborted(ctx context.Context, reason string) {
	n.send(ctx, fmt.Sprintf(":warning: Posting run aborted: %s", reason))
}

// RunFailed announces a run that errored out.
func (n *Notifier) RunFailed(ctx context.Context, err error) {
	n.send(ctx, fmt.Sprintf(":x: Posting run failed: %v", err))
}

func (n *Notifier) send(ctx context.Context, text string) {
	if n == nil {
		return
	}
	_, _, err := n.client.PostMessageContext(ctx, n.channel, slack.MsgOptionText(text, false))
	if err != nil {
		slog.Warn("Slack notification failed", "error", err)
	}
}
