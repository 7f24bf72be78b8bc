// Package publisher posts finished content to X. The orchestrator only sees
// the narrow Publish contract; credential handling and the dry-run variant
// live here.
package publisher

import "context"

// Publisher posts content and returns the platform post ID.
type Publisher interface {
	// Publish posts text with optional media (empty mediaPath means
	// text-only) and returns the created post ID.
	Publish(ctx context.Context, text, mediaPath string) (string, error)
}
