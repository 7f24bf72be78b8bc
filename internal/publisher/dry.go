package publisher

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// DryPublisher logs the would-be post and returns a placeholder ID. Used for
// --dry-run and whenever posting credentials are incomplete.
type DryPublisher struct{}

// NewDryPublisher creates a dry-run publisher.
func NewDryPublisher() *DryPublisher {
	return &DryPublisher{}
}

// Publish logs the post without any side effects.
func (p *DryPublisher) Publish(ctx context.Context, text, mediaPath string) (string, error) {
	id := "dry-" + uuid.NewString()
	slog.Info("Dry run: would post", "post_id", id, "chars", len(text), "media", mediaPath)
	slog.Info("Dry run content", "text", text)
	return id, nil
}
