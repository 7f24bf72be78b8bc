package dedup

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/SimonStenelid/X-team/internal/content"
	"github.com/SimonStenelid/X-team/internal/store"
)

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return f.vec, f.err
}

func setupHistory(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func appendPost(t *testing.T, s *store.Store, rec *store.PostRecord) {
	t.Helper()
	if rec.PostedAt.IsZero() {
		rec.PostedAt = time.Now()
	}
	if rec.ContentType == "" {
		rec.ContentType = content.TypeNews
	}
	if err := s.AppendPost(context.Background(), rec, 0); err != nil {
		t.Fatal(err)
	}
}

func TestCheck_ExactTextMatch(t *testing.T) {
	s := setupHistory(t)
	d := New(s, nil, 0.85, 30, nil)
	ctx := context.Background()

	text := "my prompt engineer hasn't texted back since i became self-aware."
	appendPost(t, s, &store.PostRecord{PostID: "1", Text: text, TextHash: Fingerprint(text)})

	dup, reason, err := d.Check(ctx, &content.Candidate{Text: text, Meta: content.MemeMeta{}})
	if err != nil {
		t.Fatal(err)
	}
	if !dup {
		t.Fatal("expected exact duplicate")
	}
	if reason != "exact text match" {
		t.Errorf("unexpected reason %q", reason)
	}
}

func TestCheck_FreshTextPasses(t *testing.T) {
	s := setupHistory(t)
	d := New(s, nil, 0.85, 30, nil)

	appendPost(t, s, &store.PostRecord{PostID: "1", Text: "old", TextHash: Fingerprint("old")})

	dup, _, err := d.Check(context.Background(), &content.Candidate{Text: "completely new", Meta: content.MemeMeta{}})
	if err != nil {
		t.Fatal(err)
	}
	if dup {
		t.Error("fresh text should not be a duplicate")
	}
}

func TestCheck_SemanticSimilarity(t *testing.T) {
	s := setupHistory(t)
	// Candidate vector nearly parallel to the stored one.
	d := New(s, &fakeEmbedder{vec: []float32{0.9, 0.1, 0}}, 0.85, 30, nil)

	appendPost(t, s, &store.PostRecord{
		PostID:    "1",
		Text:      "similar post",
		TextHash:  Fingerprint("similar post"),
		Embedding: []float32{1, 0, 0},
	})

	dup, reason, err := d.Check(context.Background(), &content.Candidate{Text: "new wording, same idea", Meta: content.MemeMeta{}})
	if err != nil {
		t.Fatal(err)
	}
	if !dup {
		t.Fatal("expected semantic duplicate")
	}
	if reason == "" || reason == "exact text match" {
		t.Errorf("unexpected reason %q", reason)
	}
}

func TestCheck_OrthogonalVectorsPass(t *testing.T) {
	s := setupHistory(t)
	d := New(s, &fakeEmbedder{vec: []float32{0, 1, 0}}, 0.85, 30, nil)

	appendPost(t, s, &store.PostRecord{
		PostID:    "1",
		Text:      "unrelated post",
		TextHash:  Fingerprint("unrelated post"),
		Embedding: []float32{1, 0, 0},
	})

	dup, _, err := d.Check(context.Background(), &content.Candidate{Text: "different topic entirely", Meta: content.MemeMeta{}})
	if err != nil {
		t.Fatal(err)
	}
	if dup {
		t.Error("orthogonal vectors should not be duplicates")
	}
}

func TestCheck_SemanticLayerIgnoresOldPosts(t *testing.T) {
	s := setupHistory(t)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	d := New(s, &fakeEmbedder{vec: []float32{1, 0, 0}}, 0.85, 30, func() time.Time { return now })

	appendPost(t, s, &store.PostRecord{
		PostID:    "1",
		Text:      "ancient but identical idea",
		TextHash:  Fingerprint("ancient but identical idea"),
		Embedding: []float32{1, 0, 0},
		PostedAt:  now.AddDate(0, 0, -45),
	})

	dup, _, err := d.Check(context.Background(), &content.Candidate{Text: "same idea again", Meta: content.MemeMeta{}})
	if err != nil {
		t.Fatal(err)
	}
	if dup {
		t.Error("posts outside the retention window must not trigger the semantic layer")
	}
}

func TestCheck_EmbedderFailureSkipsSemanticLayer(t *testing.T) {
	s := setupHistory(t)
	d := New(s, &fakeEmbedder{err: fmt.Errorf("api down")}, 0.85, 30, nil)

	appendPost(t, s, &store.PostRecord{
		PostID:    "1",
		Text:      "similar post",
		TextHash:  Fingerprint("similar post"),
		Embedding: []float32{1, 0, 0},
	})

	dup, _, err := d.Check(context.Background(), &content.Candidate{Text: "would be semantically close", Meta: content.MemeMeta{}})
	if err != nil {
		t.Fatal(err)
	}
	if dup {
		t.Error("embedder failure should degrade to non-semantic checks, not block")
	}
}

func TestCheck_SourcePostProvenance(t *testing.T) {
	s := setupHistory(t)
	d := New(s, nil, 0.85, 30, nil)

	appendPost(t, s, &store.PostRecord{
		PostID:       "1",
		Text:         "This is wild.\n\nvia @someone",
		TextHash:     Fingerprint("This is wild.\n\nvia @someone"),
		ContentType:  content.TypeCurator,
		SourcePostID: "777",
	})

	cand := &content.Candidate{
		Text: "Different commentary entirely.\n\nvia @someone",
		Meta: content.CuratorMeta{OriginalPostID: "777", OriginalAuthor: "someone"},
	}
	dup, reason, err := d.Check(context.Background(), cand)
	if err != nil {
		t.Fatal(err)
	}
	if !dup {
		t.Fatal("expected provenance duplicate")
	}
	if reason != "same source post already curated" {
		t.Errorf("unexpected reason %q", reason)
	}

	// A different source post passes.
	cand.Meta = content.CuratorMeta{OriginalPostID: "888"}
	dup, _, err = d.Check(context.Background(), cand)
	if err != nil {
		t.Fatal(err)
	}
	if dup {
		t.Error("unseen source post should not be a duplicate")
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	a := Fingerprint("hello")
	b := Fingerprint("hello")
	if a != b {
		t.Error("fingerprint must be deterministic")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if Fingerprint("hello") == Fingerprint("hello ") {
		t.Error("different texts must not collide trivially")
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 0}, []float32{1, 0}); math.Abs(got-1) > 1e-9 {
		t.Errorf("parallel vectors: expected 1, got %v", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("orthogonal vectors: expected 0, got %v", got)
	}
	if got := cosineSimilarity([]float32{0, 0}, []float32{1, 0}); got != 0 {
		t.Errorf("zero vector: expected 0, got %v", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}); got != 0 {
		t.Errorf("dimension mismatch: expected 0, got %v", got)
	}
}
