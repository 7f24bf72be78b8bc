// Package dedup implements the three-layer duplicate detection against the
// post history: exact fingerprint, semantic similarity, and source-post
// provenance for curated content.
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/SimonStenelid/X-team/internal/content"
	"github.com/SimonStenelid/X-team/internal/store"
)

// Embedder converts text into a vector. An empty vector (or an error) means
// the semantic layer is skipped for this candidate.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Detector checks candidates against the post history.
type Detector struct {
	history       *store.Store
	embedder      Embedder
	threshold     float64
	retentionDays int
	now           func() time.Time
}

// New creates a Detector. embedder may be nil, in which case the semantic
// layer is disabled.
func New(history *store.Store, embedder Embedder, threshold float64, retentionDays int, now func() time.Time) *Detector {
	if now == nil {
		now = time.Now
	}
	return &Detector{
		history:       history,
		embedder:      embedder,
		threshold:     threshold,
		retentionDays: retentionDays,
		now:           now,
	}
}

// Fingerprint returns the deterministic content digest used for exact
// duplicate lookup.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Check runs the three layers in order, short-circuiting on the first match.
func (d *Detector) Check(ctx context.Context, c *content.Candidate) (bool, string, error) {
	// Layer 1: exact fingerprint match, unbounded lookback.
	dup, err := d.history.HasTextHash(ctx, Fingerprint(c.Text))
	if err != nil {
		return false, "", err
	}
	if dup {
		slog.Warn("Duplicate detected: exact text match")
		return true, "exact text match", nil
	}

	// Layer 2: semantic similarity within the retention window. Skipped
	// entirely when the embedding is unavailable.
	if vec := d.embed(ctx, c.Text); len(vec) > 0 {
		since := d.now().AddDate(0, 0, -d.retentionDays)
		posts, err := d.history.PostsSince(ctx, since)
		if err != nil {
			return false, "", err
		}
		for _, p := range posts {
			if len(p.Embedding) == 0 {
				continue
			}
			sim := cosineSimilarity(vec, p.Embedding)
			if sim > d.threshold {
				slog.Warn("Duplicate detected: semantic similarity", "similarity", sim, "post_id", p.PostID)
				return true, fmt.Sprintf("semantic similarity %.2f", sim), nil
			}
		}
	}

	// Layer 3: provenance overlap for curated content.
	if c.Meta != nil {
		if sourceID := c.Meta.SourcePostID(); sourceID != "" {
			dup, err := d.history.HasSourcePost(ctx, sourceID)
			if err != nil {
				return false, "", err
			}
			if dup {
				slog.Warn("Duplicate detected: same source post", "source_post_id", sourceID)
				return true, "same source post already curated", nil
			}
		}
	}

	slog.Info("No duplicates detected")
	return false, "", nil
}

func (d *Detector) embed(ctx context.Context, text string) []float32 {
	if d.embedder == nil {
		return nil
	}
	vec, err := d.embedder.EmbedText(ctx, text)
	if err != nil {
		slog.Warn("Embedding failed, skipping semantic layer", "error", err)
		return nil
	}
	return vec
}

// cosineSimilarity computes the cosine similarity between two vectors.
// Mismatched dimensions or a zero-magnitude vector yield 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
