// Package generator implements the per-type content generators. Each
// generator produces a single candidate post; the orchestrator owns the
// retry and fallback policy around them.
package generator

import (
	"context"

	"github.com/SimonStenelid/X-team/internal/content"
)

// Generator produces one candidate post for its content type.
type Generator interface {
	Type() content.Type
	Generate(ctx context.Context) (*content.Candidate, error)
}
